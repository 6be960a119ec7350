package sim

// Скорость догоняния камеры за шаг
const cameraLerp = 0.05

// Camera следует за киркой по вертикали
type Camera struct {
	Y float64
}

// Follow сдвигает камеру к точке, где кирка видна на трети высоты экрана
func (c *Camera) Follow(targetY, viewportHeight float64) {
	goal := targetY - viewportHeight/3
	c.Y += (goal - c.Y) * cameraLerp
}

// Bottom возвращает нижнюю границу видимой области
func (c *Camera) Bottom(viewportHeight float64) float64 {
	return c.Y + viewportHeight
}
