// worldgen печатает ASCII-карту сгенерированной шахты и гистограмму типов блоков.
// Используется для подбора параметров генератора.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"sort"
	"strings"

	"github.com/annel0/breaknblocks/internal/config"
	"github.com/annel0/breaknblocks/internal/world"
	"github.com/annel0/breaknblocks/internal/world/block"
)

var symbols = map[block.Kind]rune{
	block.Stone:     '.',
	block.Andesite:  ',',
	block.Diorite:   ':',
	block.Granite:   ';',
	block.Deepslate: '#',
	block.Obsidian:  'O',
	block.Sand:      '~',
	block.Sandstone: '=',
	block.Bedrock:   '|',

	block.CoalOre:     'c',
	block.CopperOre:   'u',
	block.IronOre:     'i',
	block.GoldOre:     'g',
	block.RedstoneOre: 'r',
	block.LapisOre:    'l',
	block.DiamondOre:  'd',
	block.EmeraldOre:  'e',

	block.DeepslateCoalOre:     'C',
	block.DeepslateCopperOre:   'U',
	block.DeepslateIronOre:     'I',
	block.DeepslateGoldOre:     'G',
	block.DeepslateRedstoneOre: 'R',
	block.DeepslateLapisOre:    'L',
	block.DeepslateDiamondOre:  'D',
	block.DeepslateEmeraldOre:  'E',
}

func main() {
	var (
		seed       = flag.Int64("seed", 1, "seed генератора")
		rows       = flag.Int("rows", 100, "количество строк")
		summer     = flag.Bool("summer", false, "летняя шахта из песка")
		configPath = flag.String("config", "", "YAML конфигурация (секция world)")
		noMap      = flag.Bool("nomap", false, "печатать только гистограмму")
	)
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	if *rows <= 0 {
		log.Fatalf("rows должно быть положительным, получено %d", *rows)
	}

	counts, grid, err := generate(cfg.World, *seed, *rows, *summer)
	if err != nil {
		log.Fatalf("Ошибка генерации: %v", err)
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	if !*noMap {
		printMap(out, grid)
		fmt.Fprintln(out)
	}
	printHistogram(out, counts, *rows*cfg.World.GridWidth)
}

// generate строит rows строк и возвращает число блоков каждого типа и карту
func generate(cfg world.GeneratorConfig, seed int64, rows int, summer bool) (map[block.Kind]int, [][]block.Kind, error) {
	gen, err := world.NewGenerator(cfg, rand.New(rand.NewSource(seed)), nil, seed)
	if err != nil {
		return nil, nil, err
	}
	gen.SetSummer(summer)

	counts := make(map[block.Kind]int)
	grid := make([][]block.Kind, 0, rows)
	for row := 0; row < rows; row++ {
		blocks, err := gen.GenerateRow(row)
		if err != nil {
			return nil, nil, err
		}
		line := make([]block.Kind, len(blocks))
		for i, b := range blocks {
			line[i] = b.Kind
			counts[b.Kind]++
		}
		grid = append(grid, line)
	}
	return counts, grid, nil
}

func printMap(w io.Writer, grid [][]block.Kind) {
	for row, line := range grid {
		var sb strings.Builder
		for _, k := range line {
			r, ok := symbols[k]
			if !ok {
				r = '?'
			}
			sb.WriteRune(r)
		}
		fmt.Fprintf(w, "%4d |%s|\n", row, sb.String())
	}
}

func printHistogram(w io.Writer, counts map[block.Kind]int, total int) {
	kinds := make([]block.Kind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		if counts[kinds[i]] != counts[kinds[j]] {
			return counts[kinds[i]] > counts[kinds[j]]
		}
		return kinds[i] < kinds[j]
	})

	for _, k := range kinds {
		n := counts[k]
		pct := 100 * float64(n) / float64(total)
		bar := strings.Repeat("*", int(pct/2))
		fmt.Fprintf(w, "%-24s %c %6d %6.2f%% %s\n", k, symbols[k], n, pct, bar)
	}
}
