package cmd

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
	"golang.org/x/term"

	"github.com/arcanaland/spellbook/internal/card"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"
)

const (
	swatchWidth  = 12
	swatchHeight = 8
)

// manaColors are the five colors of magic, keyed by mana symbol.
var manaColors = []struct {
	symbol string
	name   string
	hex    string
}{
	{"W", "white", "#f8f4d8"},
	{"U", "blue", "#2a7fc4"},
	{"B", "black", "#2b2524"},
	{"R", "red", "#d3452b"},
	{"G", "green", "#2f8a4c"},
}

// colorlessHex is used for cards with no color identity.
const colorlessHex = "#a8a8a8"

func newShowCmd(a *app) *cobra.Command {
	var noArt bool
	cmd := &cobra.Command{
		Use:   "show [card_name]",
		Short: "Display a card with a swatch of its colors",
		Long: `Show displays every field of a card next to a swatch blended from the
card's colors. Names are matched exactly; similar names are suggested when
nothing matches.

Examples:
  spellbook show Bolt
  spellbook show "Llanowar Elves" --no-art`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			cd, err := s.Get(args[0])
			if err != nil {
				return withSuggestions(s, args[0], err)
			}

			width, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err != nil || width <= 0 {
				width = 80
			}
			art := ""
			if !noArt && !colorize.NoColor {
				art = imageToAnsi(swatch(identity(cd)), swatchWidth, swatchHeight)
			}
			displayCard(cmd.OutOrStdout(), cd, art, width)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noArt, "no-art", false, "Do not draw the color swatch")
	return cmd
}

// identity returns the card's colors, from the color field and the colored
// mana symbols in its cost, in WUBRG order.
func identity(cd card.Card) []colorful.Color {
	lowerColor := strings.ToLower(cd.Color)
	cost := strings.ToUpper(cd.ConvertedManaCost)

	var out []colorful.Color
	for _, mc := range manaColors {
		if strings.Contains(lowerColor, mc.name) || strings.Contains(cost, mc.symbol) {
			c, _ := colorful.Hex(mc.hex)
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		c, _ := colorful.Hex(colorlessHex)
		out = append(out, c)
	}
	return out
}

// swatch draws one column per color; resizing blends neighbouring columns.
func swatch(colors []colorful.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, len(colors), 1))
	for x, c := range colors {
		img.Set(x, 0, colorfulToColor(c))
	}
	return img
}

// imageToAnsi converts an image to 24-bit ANSI art of width by height cells.
func imageToAnsi(img image.Image, width, height int) string {
	// Resize image to desired dimensions (doubled for half-block characters)
	resized := resize.Resize(uint(width*2), uint(height*2), img, resize.Bilinear)

	var buffer strings.Builder
	for y := 0; y < height*2; y += 2 {
		for x := 0; x < width*2; x += 2 {
			// Top pixels as foreground, bottom pixels as background
			col1, _ := colorful.MakeColor(getColorAt(resized, x, y))
			col2, _ := colorful.MakeColor(getColorAt(resized, x+1, y))
			col3, _ := colorful.MakeColor(getColorAt(resized, x, y+1))
			col4, _ := colorful.MakeColor(getColorAt(resized, x+1, y+1))

			fg := colorfulToColor(averageColor(col1, col2))
			bg := colorfulToColor(averageColor(col3, col4))
			buffer.WriteString(ansiColorString('▀', fg, bg))
		}
		buffer.WriteString("\n")
	}
	return strings.TrimSuffix(buffer.String(), "\n")
}

func getColorAt(img image.Image, x, y int) color.Color {
	bounds := img.Bounds()
	if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
		return img.At(x, y)
	}
	return color.RGBA{0, 0, 0, 255}
}

func averageColor(colors ...colorful.Color) colorful.Color {
	var r, g, b float64
	for _, c := range colors {
		r += c.R
		g += c.G
		b += c.B
	}
	count := float64(len(colors))
	return colorful.Color{R: r / count, G: g / count, B: b / count}
}

func colorfulToColor(c colorful.Color) color.Color {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// ansiColorString formats a character with 24-bit foreground and background
// colors.
func ansiColorString(char rune, fg, bg color.Color) string {
	r1, g1, b1, _ := fg.RGBA()
	r2, g2, b2, _ := bg.RGBA()

	// RGBA() returns values in range 0-65535
	r1, g1, b1 = r1>>8, g1>>8, b1>>8
	r2, g2, b2 = r2>>8, g2>>8, b2>>8

	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm%c\x1b[0m",
		r1, g1, b1, r2, g2, b2, char)
}

// wrapText wraps text to a specified width
func wrapText(text string, width int) []string {
	if width < 10 {
		width = 40
	}

	var result []string
	var currentLine string
	words := strings.Fields(text)

	if len(words) == 0 {
		return []string{""}
	}

	for _, word := range words {
		switch {
		case len(currentLine) == 0:
			currentLine = word
		case len(currentLine)+1+len(word) <= width:
			currentLine += " " + word
		default:
			result = append(result, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		result = append(result, currentLine)
	}
	return result
}

func field(label, value string) string {
	return colorize.CyanString("%-9s", label+":") + colorize.HiWhiteString("%s", value)
}

// cardLines returns the text shown beside the swatch, wrapped to width.
func cardLines(cd card.Card, width int) []string {
	lines := []string{field("Card", cd.Name)}
	if cd.ConvertedManaCost != "" {
		lines = append(lines, field("Cost", cd.ConvertedManaCost))
	}
	if cd.Color != "" {
		lines = append(lines, field("Color", cd.Color))
	}
	if cd.Type != "" {
		lines = append(lines, field("Type", cd.Type))
	}
	if len(cd.Keywords) > 0 {
		lines = append(lines, field("Keywords", strings.Join(cd.Keywords, " · ")))
	}
	switch {
	case !cd.HasLegality():
	case len(cd.Legality) == 0:
		lines = append(lines, field("Legal", "nowhere"))
	default:
		lines = append(lines, field("Legal", strings.Join(cd.Legality, ", ")))
	}
	if cd.Text != "" {
		lines = append(lines, "", colorize.CyanString("Text:"))
		lines = append(lines, wrapText(cd.Text, width)...)
	}
	return lines
}

// displayCard prints the card information to the right of the ANSI art.
func displayCard(w io.Writer, cd card.Card, ansiArt string, width int) {
	var ansiLines []string
	maxAnsiWidth := 0
	if ansiArt != "" {
		ansiLines = strings.Split(ansiArt, "\n")
		for _, line := range ansiLines {
			if n := len([]rune(stripAnsi(line))); n > maxAnsiWidth {
				maxAnsiWidth = n
			}
		}
	}

	spacing := 0
	if maxAnsiWidth > 0 {
		spacing = 4
	}
	infoStartCol := maxAnsiWidth + spacing
	infoWidth := width - infoStartCol - 2
	if infoWidth < 20 {
		infoWidth = 20
	}
	infoLines := cardLines(cd, infoWidth)

	fmt.Fprintln(w)
	for i := 0; i < max(len(ansiLines), len(infoLines)); i++ {
		line := "  "
		if i < len(ansiLines) {
			line += ansiLines[i] + strings.Repeat(" ", infoStartCol-len([]rune(stripAnsi(ansiLines[i]))))
		} else {
			line += strings.Repeat(" ", infoStartCol)
		}
		if i < len(infoLines) {
			line += infoLines[i]
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
	fmt.Fprintln(w)
}

// stripAnsi removes ANSI escape sequences from a string
func stripAnsi(s string) string {
	var result strings.Builder
	inEscape := false
	for _, c := range s {
		if inEscape {
			if c == 'm' {
				inEscape = false
			}
		} else if c == '\033' {
			inEscape = true
		} else {
			result.WriteRune(c)
		}
	}
	return result.String()
}
