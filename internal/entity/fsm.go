package entity

// Phase - фаза способности
type Phase uint8

const (
	PhaseIdle     Phase = iota // Перезарядка
	PhaseWindup                // Подготовка
	PhaseActive                // Срабатывание
	PhaseRecovery              // Восстановление
)

// String возвращает имя фазы
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseWindup:
		return "windup"
	case PhaseActive:
		return "active"
	case PhaseRecovery:
		return "recovery"
	default:
		return "unknown"
	}
}

// State представляет состояние конечного автомата
type State interface {
	Phase() Phase
	Enter(m *AbilityMachine)
	Update(m *AbilityMachine) State
	Exit(m *AbilityMachine)
}

// Timing задаёт длительности фаз в секундах симуляции
type Timing struct {
	Cooldown float64 // Период между срабатываниями
	Windup   float64
	Active   float64
	Recovery float64
}

// DefaultTiming возвращает тайминги для указанного периода перезарядки
func DefaultTiming(cooldown float64) Timing {
	return Timing{Cooldown: cooldown, Windup: 0.25, Active: 0.1, Recovery: 0.25}.normalized()
}

// normalized укорачивает фазы так, чтобы цикл укладывался в период перезарядки
func (t Timing) normalized() Timing {
	if t.Cooldown <= 0 {
		return Timing{}
	}
	if t.Windup > t.Cooldown {
		t.Windup = t.Cooldown
	}
	rest := t.Cooldown - t.Windup
	if t.Active+t.Recovery > rest {
		t.Active = rest / 2
		t.Recovery = rest / 2
	}
	return t
}

// AbilityMachine - конечный автомат способности Idle -> Windup -> Active -> Recovery -> Idle.
// Время продвигается только через Advance, часы процесса не используются.
// Способность срабатывает ровно в момент перехода Windup -> Active.
type AbilityMachine struct {
	Timing       Timing
	CurrentState State
	TimeInState  float64 // Время в текущей фазе
	SinceFire    float64 // Время с последнего срабатывания
	Fired        int     // Счётчик срабатываний
	OnFire       func()
}

// NewAbilityMachine создаёт автомат в фазе Idle
func NewAbilityMachine(timing Timing, onFire func()) *AbilityMachine {
	m := &AbilityMachine{Timing: timing.normalized(), OnFire: onFire}
	m.SetState(&IdleState{})
	return m
}

// Phase возвращает текущую фазу
func (m *AbilityMachine) Phase() Phase {
	if m.CurrentState == nil {
		return PhaseIdle
	}
	return m.CurrentState.Phase()
}

// Enabled сообщает, есть ли у автомата что запускать
func (m *AbilityMachine) Enabled() bool {
	return m.Timing.Cooldown > 0
}

// Advance продвигает автомат на dt секунд симуляции. За один вызов
// возможен не более чем один переход.
func (m *AbilityMachine) Advance(dt float64) {
	if !m.Enabled() || m.CurrentState == nil {
		return
	}
	m.TimeInState += dt
	m.SinceFire += dt

	next := m.CurrentState.Update(m)
	if next != m.CurrentState {
		m.SetState(next)
	}
}

// SetState устанавливает новое состояние
func (m *AbilityMachine) SetState(state State) {
	if m.CurrentState != nil {
		m.CurrentState.Exit(m)
	}
	m.CurrentState = state
	m.TimeInState = 0
	if m.CurrentState != nil {
		m.CurrentState.Enter(m)
	}
}

// Reset возвращает автомат в Idle и сбрасывает таймеры
func (m *AbilityMachine) Reset(timing Timing) {
	m.Timing = timing.normalized()
	m.SinceFire = 0
	m.SetState(&IdleState{})
}

// === Конкретные состояния ===

// IdleState ждёт, пока до срабатывания не останется времени подготовки
type IdleState struct{}

func (s *IdleState) Phase() Phase             { return PhaseIdle }
func (s *IdleState) Enter(m *AbilityMachine) {}
func (s *IdleState) Exit(m *AbilityMachine)  {}

func (s *IdleState) Update(m *AbilityMachine) State {
	if m.SinceFire >= m.Timing.Cooldown-m.Timing.Windup {
		return &WindupState{}
	}
	return s
}

// WindupState - подготовка перед срабатыванием
type WindupState struct{}

func (s *WindupState) Phase() Phase             { return PhaseWindup }
func (s *WindupState) Enter(m *AbilityMachine) {}
func (s *WindupState) Exit(m *AbilityMachine)  {}

func (s *WindupState) Update(m *AbilityMachine) State {
	if m.SinceFire >= m.Timing.Cooldown {
		return &ActiveState{}
	}
	return s
}

// ActiveState запускает способность при входе
type ActiveState struct{}

func (s *ActiveState) Phase() Phase { return PhaseActive }

func (s *ActiveState) Enter(m *AbilityMachine) {
	m.SinceFire = 0
	m.Fired++
	if m.OnFire != nil {
		m.OnFire()
	}
}

func (s *ActiveState) Exit(m *AbilityMachine) {}

func (s *ActiveState) Update(m *AbilityMachine) State {
	if m.TimeInState >= m.Timing.Active {
		return &RecoveryState{}
	}
	return s
}

// RecoveryState - восстановление после срабатывания
type RecoveryState struct{}

func (s *RecoveryState) Phase() Phase             { return PhaseRecovery }
func (s *RecoveryState) Enter(m *AbilityMachine) {}
func (s *RecoveryState) Exit(m *AbilityMachine)  {}

func (s *RecoveryState) Update(m *AbilityMachine) State {
	if m.TimeInState >= m.Timing.Recovery {
		return &IdleState{}
	}
	return s
}
