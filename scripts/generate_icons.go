//go:build ignore

// Скрипт для генерации иконок трея.
// Запуск: go run scripts/generate_icons.go
package main

import (
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"
)

const size = 64

func main() {
	dir := "embedded"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("Не удалось создать директорию %s: %v", dir, err)
	}

	icons := []struct {
		name  string
		color color.RGBA
	}{
		{"icon_idle.png", color.RGBA{128, 128, 128, 255}},       // Серый
		{"icon_starting.png", color.RGBA{230, 160, 50, 255}},    // Оранжевый
		{"icon_translating.png", color.RGBA{60, 180, 100, 255}}, // Зелёный
		{"icon_error.png", color.RGBA{220, 50, 50, 255}},        // Красный
	}

	for _, icon := range icons {
		path := filepath.Join(dir, icon.name)
		if err := generateIcon(path, icon.color); err != nil {
			log.Fatalf("Ошибка генерации %s: %v", icon.name, err)
		}
		log.Printf("Создан: %s", path)
	}
}

// generateIcon рисует облачко субтитров: скруглённый прямоугольник с
// хвостиком и двумя светлыми строками текста.
func generateIcon(path string, c color.RGBA) error {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	light := color.RGBA{255, 255, 255, 255}

	const (
		left, top, right, bottom = 6, 10, 58, 46
		radius                   = 8
	)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if inRoundRect(x, y, left, top, right, bottom, radius) {
				img.Set(x, y, c)
			}
		}
	}

	// Хвостик облачка
	for i := 0; i < 10; i++ {
		for x := 16; x < 26-i; x++ {
			img.Set(x, bottom+i, c)
		}
	}

	// Строки субтитров
	for _, line := range []struct{ y, x0, x1 int }{{22, 14, 50}, {32, 14, 40}} {
		for y := line.y; y < line.y+4; y++ {
			for x := line.x0; x < line.x1; x++ {
				img.Set(x, y, light)
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}

func inRoundRect(x, y, left, top, right, bottom, r int) bool {
	if x < left || x >= right || y < top || y >= bottom {
		return false
	}
	cx := clampInt(x, left+r, right-r-1)
	cy := clampInt(y, top+r, bottom-r-1)
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= r*r
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
