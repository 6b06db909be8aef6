// Package subtitle описывает поверхность показа субтитров и их стиль.
package subtitle

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Style - стиль субтитров. Каждое обновление заменяет стиль целиком.
type Style struct {
	FontSize   int
	Color      string  // "#rrggbb"
	Background string  // "#rrggbb", без альфы
	Opacity    float64 // прозрачность фона 0..1
	FontFamily string
}

// DefaultStyle возвращает стиль по умолчанию.
func DefaultStyle() Style {
	return Style{
		FontSize:   24,
		Color:      "#ffffff",
		Background: "#000000",
		Opacity:    0.8,
		FontFamily: "Arial",
	}
}

// Normalize приводит значения к допустимым диапазонам.
func (s Style) Normalize() Style {
	def := DefaultStyle()
	if s.FontSize <= 0 {
		s.FontSize = def.FontSize
	}
	if s.FontSize > 96 {
		s.FontSize = 96
	}
	if _, err := colorful.Hex(s.Color); err != nil {
		s.Color = def.Color
	}
	if _, err := colorful.Hex(s.Background); err != nil {
		s.Background = def.Background
	}
	if math.IsNaN(s.Opacity) || s.Opacity < 0 {
		s.Opacity = 0
	}
	if s.Opacity > 1 {
		s.Opacity = 1
	}
	if strings.TrimSpace(s.FontFamily) == "" {
		s.FontFamily = def.FontFamily
	}
	return s
}

// TextColor возвращает цвет текста для отрисовки.
func (s Style) TextColor() color.NRGBA {
	return toNRGBA(s.Color, 1)
}

// BackgroundColor возвращает цвет фона с учётом Opacity.
func (s Style) BackgroundColor() color.NRGBA {
	return toNRGBA(s.Background, s.Opacity)
}

// BackgroundCSS сериализует фон в строку вида "rgba(0, 0, 0, 0.8)".
func (s Style) BackgroundCSS() string {
	c := s.BackgroundColor()
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B,
		strconv.FormatFloat(s.Opacity, 'f', -1, 64))
}

func toNRGBA(hex string, alpha float64) color.NRGBA {
	c, err := colorful.Hex(hex)
	if err != nil {
		c = colorful.Color{}
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(alpha * 255))}
}

// ParseCSSColor разбирает "#rrggbb", "rgb(r, g, b)" или "rgba(r, g, b, a)".
// Возвращает цвет в hex и альфу.
func ParseCSSColor(v string) (hex string, alpha float64, err error) {
	v = strings.TrimSpace(strings.ToLower(v))
	if strings.HasPrefix(v, "#") {
		c, err := colorful.Hex(v)
		if err != nil {
			return "", 0, fmt.Errorf("parse color %q: %w", v, err)
		}
		return c.Hex(), 1, nil
	}

	var body string
	switch {
	case strings.HasPrefix(v, "rgba(") && strings.HasSuffix(v, ")"):
		body = v[len("rgba(") : len(v)-1]
	case strings.HasPrefix(v, "rgb(") && strings.HasSuffix(v, ")"):
		body = v[len("rgb(") : len(v)-1]
	default:
		return "", 0, fmt.Errorf("unsupported color %q", v)
	}

	parts := strings.Split(body, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return "", 0, fmt.Errorf("unsupported color %q", v)
	}

	var rgb [3]float64
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n < 0 || n > 255 {
			return "", 0, fmt.Errorf("bad channel in %q", v)
		}
		rgb[i] = float64(n) / 255
	}

	alpha = 1
	if len(parts) == 4 {
		alpha, err = strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || alpha < 0 || alpha > 1 {
			return "", 0, fmt.Errorf("bad alpha in %q", v)
		}
	}

	return colorful.Color{R: rgb[0], G: rgb[1], B: rgb[2]}.Hex(), alpha, nil
}

// styleJSON - формат хранения в настройках (совместим с исходными
// настройками оверлея).
type styleJSON struct {
	FontSize        int    `json:"fontSize"`
	Color           string `json:"color"`
	BackgroundColor string `json:"backgroundColor"`
	FontFamily      string `json:"fontFamily"`
}

// MarshalJSON реализует json.Marshaler.
func (s Style) MarshalJSON() ([]byte, error) {
	return json.Marshal(styleJSON{
		FontSize:        s.FontSize,
		Color:           s.Color,
		BackgroundColor: s.BackgroundCSS(),
		FontFamily:      s.FontFamily,
	})
}

// UnmarshalJSON реализует json.Unmarshaler.
func (s *Style) UnmarshalJSON(data []byte) error {
	var raw styleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := DefaultStyle()
	if raw.FontSize > 0 {
		out.FontSize = raw.FontSize
	}
	if raw.Color != "" {
		if hex, _, err := ParseCSSColor(raw.Color); err == nil {
			out.Color = hex
		}
	}
	if raw.BackgroundColor != "" {
		if hex, alpha, err := ParseCSSColor(raw.BackgroundColor); err == nil {
			out.Background = hex
			out.Opacity = alpha
		}
	}
	if raw.FontFamily != "" {
		out.FontFamily = raw.FontFamily
	}

	*s = out
	return nil
}
