package span

import (
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// Capability is the renderer's only input for what ANSI it may emit. It
// mirrors chirpy.ColorSupport so this package has no dependency on the
// root package (the formatter layer passes the value across the boundary).
type Capability int

const (
	CapNone Capability = iota
	Cap16
	Cap256
	CapTruecolor
)

// effectiveStyle is the folded style at a point in the tree: each field is
// "set or not", folding top-down so an inner Styled only overrides the
// attributes it actually specifies.
type effectiveStyle struct {
	fg, bg                               *Color
	bold, italic, underline, dim, strike bool
}

func (s effectiveStyle) fold(add Style) effectiveStyle {
	out := s
	if add.FG != nil {
		out.fg = add.FG
	}
	if add.BG != nil {
		out.bg = add.BG
	}
	out.bold = out.bold || add.Bold
	out.italic = out.italic || add.Italic
	out.underline = out.underline || add.Underline
	out.dim = out.dim || add.Dim
	out.strike = out.strike || add.Strikethrough
	return out
}

func colorEq(a, b *Color) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s effectiveStyle) equal(o effectiveStyle) bool {
	return colorEq(s.fg, o.fg) && colorEq(s.bg, o.bg) && s.bold == o.bold && s.italic == o.italic &&
		s.underline == o.underline && s.dim == o.dim && s.strike == o.strike
}

func (s effectiveStyle) isZero() bool {
	return s.equal(effectiveStyle{})
}

// Render walks the tree from root and writes its rendered form to buf,
// respecting cap. Rendering the same tree with the same cap is
// byte-identical.
func Render(t *Tree, root Handle, cap Capability, buf []byte) []byte {
	r := &renderer{t: t, cap: cap, buf: buf}
	r.stack = []Style{{}}
	r.render(root)
	if !r.last.isZero() {
		r.buf = append(r.buf, resetSeq...)
	}
	return r.buf
}

const resetSeq = "\x1b[0m"

type renderer struct {
	t     *Tree
	cap   Capability
	buf   []byte
	stack []Style
	last  effectiveStyle
}

func (r *renderer) fold() effectiveStyle {
	out := effectiveStyle{}
	for _, s := range r.stack {
		out = out.fold(s)
	}
	return out
}

func (r *renderer) emitText(s string) {
	if s == "" {
		return
	}
	if r.cap != CapNone {
		cur := r.fold()
		if !cur.equal(r.last) {
			r.buf = append(r.buf, resetSeq...)
			r.buf = append(r.buf, sgrSequence(cur, r.cap)...)
			r.last = cur
		}
	}
	r.buf = append(r.buf, s...)
}

func (r *renderer) render(h Handle) {
	n := r.t.at(h)
	switch n.kind {
	case KindPlainText, KindWhitespace:
		r.emitText(n.text)
	case KindNewLine:
		r.buf = append(r.buf, '\n')
	case KindEmpty:
		// nothing
	case KindSequence:
		for i, c := range n.children {
			if i > 0 && n.separator != "" {
				r.emitText(n.separator)
			}
			r.render(c)
		}
	case KindStyled:
		r.stack = append(r.stack, n.style)
		for _, c := range n.children {
			r.render(c)
		}
		r.stack = r.stack[:len(r.stack)-1]
	case KindAligned:
		r.renderAligned(h, n)
	case KindBordered:
		r.renderBordered(h, n)
	case KindSurrounded:
		if n.prefix != noHandle {
			r.render(n.prefix)
		}
		for _, c := range n.children {
			r.render(c)
		}
		if n.suffix != noHandle {
			r.render(n.suffix)
		}
	}
}

// resetForRaw closes any active SGR state before raw (self-contained)
// content is appended, keeping the style tracking in sync with the terminal.
func (r *renderer) resetForRaw() {
	if r.cap != CapNone && !r.last.isZero() {
		r.buf = append(r.buf, resetSeq...)
		r.last = effectiveStyle{}
	}
}

// renderAligned renders the child into an isolated buffer (so its content
// doesn't leak outer styling into the width measurement) then pads/truncates
// per line to n.width.
func (r *renderer) renderAligned(h Handle, n *node) {
	r.resetForRaw()
	inner := Render(r.t, onlyChildOrEmpty(r.t, h), r.cap, nil)
	lines := strings.Split(string(inner), "\n")
	for i, line := range lines {
		if i > 0 {
			r.buf = append(r.buf, '\n')
		}
		r.buf = append(r.buf, padLine(line, n.width, n.align)...)
	}
}

func onlyChildOrEmpty(t *Tree, h Handle) Handle {
	children := t.at(h).children
	if len(children) == 0 {
		return t.new(KindEmpty)
	}
	if len(children) == 1 {
		return children[0]
	}
	seq := t.new(KindSequence)
	t.at(seq).children = children
	return seq
}

func padLine(line string, width int, align Align) string {
	visible := visibleLen(line)
	if visible >= width {
		return truncateVisible(line, width)
	}
	padN := width - visible
	switch align {
	case AlignRight:
		return strings.Repeat(" ", padN) + line
	case AlignCenter:
		left := padN / 2
		right := padN - left
		return strings.Repeat(" ", left) + line + strings.Repeat(" ", right)
	default:
		return line + strings.Repeat(" ", padN)
	}
}

// visibleLen counts printable runes, skipping SGR escape sequences.
func visibleLen(s string) int {
	n := 0
	inEsc := false
	for _, r := range s {
		if r == '\x1b' {
			inEsc = true
			continue
		}
		if inEsc {
			if r == 'm' {
				inEsc = false
			}
			continue
		}
		n++
	}
	return n
}

func truncateVisible(s string, width int) string {
	var b strings.Builder
	n := 0
	inEsc := false
	for _, r := range s {
		if r == '\x1b' {
			inEsc = true
			b.WriteRune(r)
			continue
		}
		if inEsc {
			b.WriteRune(r)
			if r == 'm' {
				inEsc = false
			}
			continue
		}
		if n >= width {
			continue
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

var borderGlyphs = map[BorderStyle][6]string{
	BorderSingle:  {"┌", "┐", "└", "┘", "─", "│"},
	BorderDouble:  {"╔", "╗", "╚", "╝", "═", "║"},
	BorderRounded: {"╭", "╮", "╰", "╯", "─", "│"},
	BorderHeavy:   {"┏", "┓", "┗", "┛", "━", "┃"},
	BorderASCII:   {"+", "+", "+", "+", "-", "|"},
}

// renderBordered measures the rendered child, then draws a box of the
// configured style around it, padded per n.padding. The border color, if
// set, is applied only to the frame glyphs, never to content.
func (r *renderer) renderBordered(h Handle, n *node) {
	r.resetForRaw()
	inner := string(Render(r.t, onlyChildOrEmpty(r.t, h), r.cap, nil))
	lines := strings.Split(inner, "\n")
	innerWidth := 0
	for _, l := range lines {
		if w := visibleLen(l); w > innerWidth {
			innerWidth = w
		}
	}
	glyphs := borderGlyphs[n.borderStyle]
	pad := n.padding
	contentWidth := innerWidth + 2*pad

	colorOn := func(s string) string {
		if n.borderColor == nil || r.cap == CapNone {
			return s
		}
		return sgrSequence(effectiveStyle{fg: n.borderColor}, r.cap) + s + resetSeq
	}

	top := glyphs[0] + strings.Repeat(glyphs[4], contentWidth) + glyphs[1]
	bottom := glyphs[2] + strings.Repeat(glyphs[4], contentWidth) + glyphs[3]
	r.buf = append(r.buf, colorOn(top)...)
	r.buf = append(r.buf, '\n')

	padStr := strings.Repeat(" ", pad)
	for i := 0; i < pad; i++ {
		r.buf = append(r.buf, colorOn(glyphs[5])...)
		r.buf = append(r.buf, strings.Repeat(" ", contentWidth)...)
		r.buf = append(r.buf, colorOn(glyphs[5])...)
		r.buf = append(r.buf, '\n')
	}
	for _, l := range lines {
		r.buf = append(r.buf, colorOn(glyphs[5])...)
		r.buf = append(r.buf, padStr...)
		r.buf = append(r.buf, padLine(l, innerWidth, AlignLeft)...)
		r.buf = append(r.buf, padStr...)
		r.buf = append(r.buf, colorOn(glyphs[5])...)
		r.buf = append(r.buf, '\n')
	}
	for i := 0; i < pad; i++ {
		r.buf = append(r.buf, colorOn(glyphs[5])...)
		r.buf = append(r.buf, strings.Repeat(" ", contentWidth)...)
		r.buf = append(r.buf, colorOn(glyphs[5])...)
		r.buf = append(r.buf, '\n')
	}
	r.buf = append(r.buf, colorOn(bottom)...)
}

// sgrSequence builds the minimal SGR escape for s at the given capability.
// Truecolor values are down-sampled to the 16/256 palettes by nearest
// squared-RGB distance; the 16-color path takes its palette codes from
// github.com/fatih/color's Attribute constants.
func sgrSequence(s effectiveStyle, cap Capability) string {
	var codes []string
	if s.bold {
		codes = append(codes, "1")
	}
	if s.dim {
		codes = append(codes, "2")
	}
	if s.italic {
		codes = append(codes, "3")
	}
	if s.underline {
		codes = append(codes, "4")
	}
	if s.strike {
		codes = append(codes, "9")
	}
	if s.fg != nil {
		codes = append(codes, fgCode(*s.fg, cap))
	}
	if s.bg != nil {
		codes = append(codes, bgCode(*s.bg, cap))
	}
	if len(codes) == 0 {
		return ""
	}
	return "\x1b[" + strings.Join(codes, ";") + "m"
}

func fgCode(c Color, cap Capability) string {
	switch cap {
	case CapTruecolor:
		return "38;2;" + rgb(c)
	case Cap256:
		return "38;5;" + strconv.Itoa(downsample256(c))
	default:
		return strconv.Itoa(int(downsample16Attr(c)))
	}
}

func bgCode(c Color, cap Capability) string {
	switch cap {
	case CapTruecolor:
		return "48;2;" + rgb(c)
	case Cap256:
		return "48;5;" + strconv.Itoa(downsample256(c))
	default:
		// Background codes sit 10 above their foreground counterparts.
		return strconv.Itoa(int(downsample16Attr(c)) + 10)
	}
}

func rgb(c Color) string {
	return strconv.Itoa(int(c.R)) + ";" + strconv.Itoa(int(c.G)) + ";" + strconv.Itoa(int(c.B))
}

// downsample16Attr maps c to the nearest of the 8 standard ANSI foreground
// colors, returned as a fatih/color Attribute so the 16-color path shares
// its palette definition with the rest of the ecosystem instead of
// hand-rolling a second copy of "which code is red".
func downsample16Attr(c Color) color.Attribute {
	type entry struct {
		attr    color.Attribute
		r, g, b uint8
	}
	palette := []entry{
		{color.FgBlack, 0, 0, 0},
		{color.FgRed, 205, 0, 0},
		{color.FgGreen, 0, 205, 0},
		{color.FgYellow, 205, 205, 0},
		{color.FgBlue, 0, 0, 238},
		{color.FgMagenta, 205, 0, 205},
		{color.FgCyan, 0, 205, 205},
		{color.FgWhite, 229, 229, 229},
	}
	best := palette[0]
	bestDist := dist2(c, Color{best.r, best.g, best.b})
	for _, p := range palette[1:] {
		if d := dist2(c, Color{p.r, p.g, p.b}); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best.attr
}

// downsample256 maps c into the 6x6x6 color cube of the xterm-256 palette
// (codes 16-231), nearest by squared RGB distance.
func downsample256(c Color) int {
	steps := [6]uint8{0, 95, 135, 175, 215, 255}
	nearest := func(v uint8) int {
		best, bestDist := 0, 256*256
		for i, s := range steps {
			d := int(v) - int(s)
			if d*d < bestDist {
				best, bestDist = i, d*d
			}
		}
		return best
	}
	ri, gi, bi := nearest(c.R), nearest(c.G), nearest(c.B)
	return 16 + 36*ri + 6*gi + bi
}

func dist2(a, b Color) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}
