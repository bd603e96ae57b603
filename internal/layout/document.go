package layout

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kcjengr/hazzy/internal/geometry"
	"github.com/kcjengr/hazzy/internal/registry"
)

const (
	rootElement   = "hazzy_interface"
	windowElement = "window"

	timestampLayout = "2006-01-02 15:04:05"
)

// Property names, in the order they are written.
var (
	windowProperties = []string{"x", "y", "w", "h", "maximize", "fullscreen"}
	widgetProperties = []string{"x", "y", "w", "h"}
)

type xmlProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type xmlWidget struct {
	Package    string        `xml:"package,attr"`
	Properties []xmlProperty `xml:"property"`
}

type xmlScreen struct {
	Name     string      `xml:"name,attr"`
	Title    string      `xml:"title,attr"`
	Position string      `xml:"position,attr"`
	Widgets  []xmlWidget `xml:"widget"`
}

// Name and Title are pointers so an empty attribute is told apart from a
// missing one.
type xmlWindow struct {
	Name       *string       `xml:"name,attr"`
	Title      *string       `xml:"title,attr"`
	Properties []xmlProperty `xml:"property"`
	Screens    []xmlScreen   `xml:"screen"`
}

type xmlDocument struct {
	XMLName xml.Name    `xml:"hazzy_interface"`
	Windows []xmlWindow `xml:"window"`
}

// Resolver looks up widget packages. *registry.Registry implements it.
type Resolver interface {
	Resolve(pkg string) (registry.Entry, error)
}

// Encode renders the model as a layout document. The two leading comments
// are informational and never read back.
func Encode(m *Model, productName string, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	root := xml.StartElement{Name: xml.Name{Local: rootElement}}
	tokens := []xml.Token{
		root,
		xml.Comment(commentText("Interface for: " + productName)),
		xml.Comment(commentText("Last modified: " + now.Format(timestampLayout))),
	}
	for _, tok := range tokens {
		if err := enc.EncodeToken(tok); err != nil {
			return nil, fmt.Errorf("failed to encode layout header: %w", err)
		}
	}

	if err := enc.EncodeElement(windowToXML(m), xml.StartElement{Name: xml.Name{Local: windowElement}}); err != nil {
		return nil, fmt.Errorf("failed to encode window: %w", err)
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, fmt.Errorf("failed to encode layout: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("failed to encode layout: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// commentText keeps user-supplied text legal inside an XML comment.
func commentText(s string) string {
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "- -")
	}
	return strings.TrimSuffix(s, "-")
}

func windowToXML(m *Model) xmlWindow {
	w := m.Window
	win := xmlWindow{
		Name:  &w.Name,
		Title: &w.Title,
		Properties: properties(windowProperties, map[string]string{
			"x":          strconv.Itoa(w.X),
			"y":          strconv.Itoa(w.Y),
			"w":          strconv.Itoa(w.Width),
			"h":          strconv.Itoa(w.Height),
			"maximize":   formatBool(w.Maximized),
			"fullscreen": formatBool(w.Fullscreen),
		}),
	}

	for _, s := range m.Screens.List() {
		scr := xmlScreen{
			Name:     s.Name,
			Title:    s.Title,
			Position: strconv.Itoa(s.Position()),
		}
		for _, inst := range s.Instances() {
			r, _ := m.Geometry.Get(inst.ID)
			scr.Widgets = append(scr.Widgets, xmlWidget{
				Package: inst.Package,
				Properties: properties(widgetProperties, map[string]string{
					"x": strconv.Itoa(r.X),
					"y": strconv.Itoa(r.Y),
					"w": strconv.Itoa(r.Width),
					"h": strconv.Itoa(r.Height),
				}),
			})
		}
		win.Screens = append(win.Screens, scr)
	}
	return win
}

func properties(order []string, values map[string]string) []xmlProperty {
	out := make([]xmlProperty, 0, len(order))
	for _, name := range order {
		out = append(out, xmlProperty{Name: name, Value: values[name]})
	}
	return out
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// parseDocument decodes exactly one hazzy_interface root element. Anything
// but whitespace, comments or processing instructions after it is corruption.
func parseDocument(data []byte) (*xmlDocument, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var doc xmlDocument
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("document is empty")
		}
		return nil, err
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return nil, fmt.Errorf("unexpected element <%s> after document root", t.Name.Local)
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return nil, fmt.Errorf("unexpected text after document root")
			}
		}
	}
	return &doc, nil
}

// Decode builds a model from document bytes. A parse failure returns
// ErrCorruptLayout; every other problem is recovered and reported as a
// warning.
func Decode(data []byte, resolver Resolver, d Defaults) (*Model, []Warning, error) {
	doc, err := parseDocument(data)
	if err != nil {
		return nil, nil, &CorruptLayoutError{Err: err}
	}

	var warnings []Warning
	if len(doc.Windows) == 0 {
		warnings = append(warnings, Warning{
			Kind: WarnMissingWindow,
			Err:  fmt.Errorf("%w: no <window> element", ErrMissingProperty),
		})
		return DefaultModel(d), warnings, nil
	}
	for range doc.Windows[1:] {
		warnings = append(warnings, Warning{
			Kind: WarnExtraWindow,
			Err:  errors.New("only the first <window> element is used"),
		})
	}

	dec := decoder{resolver: resolver, defaults: d}
	m := dec.window(doc.Windows[0])
	warnings = append(warnings, dec.warnings...)
	return m, warnings, nil
}

type decoder struct {
	resolver Resolver
	defaults Defaults
	warnings []Warning
}

func (d *decoder) warn(w Warning) {
	d.warnings = append(d.warnings, w)
}

func (d *decoder) window(xw xmlWindow) *Model {
	def := d.defaults.Window
	props := propertyMap(xw.Properties)

	win := WindowState{Name: def.Name, Title: def.Title}
	if xw.Name != nil {
		win.Name = *xw.Name
	}
	if xw.Title != nil {
		win.Title = *xw.Title
	}
	win.X = d.intProp(props, "x", def.X, "", "", false)
	win.Y = d.intProp(props, "y", def.Y, "", "", false)
	win.Width = d.intProp(props, "w", def.Width, "", "", true)
	win.Height = d.intProp(props, "h", def.Height, "", "", true)
	win.Maximized = d.boolProp(props, "maximize")
	win.Fullscreen = d.boolProp(props, "fullscreen")

	m := NewModel(win)
	for _, xs := range xw.Screens {
		d.screen(m, xs)
	}
	return m
}

func (d *decoder) screen(m *Model, xs xmlScreen) {
	s, err := m.Screens.Add(xs.Name, xs.Title)
	if err != nil {
		d.warn(Warning{Kind: WarnInvalidScreen, Screen: xs.Name, Err: err})
		return
	}

	for _, xw := range xs.Widgets {
		entry, err := d.resolver.Resolve(xw.Package)
		if err != nil {
			d.warn(Warning{Kind: WarnUnknownWidgetPackage, Screen: s.Name, Package: xw.Package, Err: err})
			continue
		}
		props := propertyMap(xw.Properties)
		r := geometry.Rect{
			X:      d.intProp(props, "x", 0, s.Name, xw.Package, false),
			Y:      d.intProp(props, "y", 0, s.Name, xw.Package, false),
			Width:  d.intProp(props, "w", entry.DefaultSize.Width, s.Name, xw.Package, false),
			Height: d.intProp(props, "h", entry.DefaultSize.Height, s.Name, xw.Package, false),
		}
		if r.Validate() != nil {
			d.warn(Warning{
				Kind:    WarnInvalidProperty,
				Screen:  s.Name,
				Package: xw.Package,
				Err:     fmt.Errorf("%w: negative geometry clamped to zero", ErrInvalidProperty),
			})
			r = r.Clamp()
		}
		// r is non-negative here, so Place cannot fail on geometry.
		if _, err := m.Place(s.Name, entry.Package, r); err != nil {
			d.warn(Warning{Kind: WarnInvalidProperty, Screen: s.Name, Package: xw.Package, Err: err})
		}
	}
}

func propertyMap(props []xmlProperty) map[string]string {
	out := make(map[string]string, len(props))
	for _, p := range props {
		out[p.Name] = strings.TrimSpace(p.Value)
	}
	return out
}

// intProp reads an integer property, falling back to def when it is missing
// or unparsable. With positive set, values below 1 also fall back.
func (d *decoder) intProp(props map[string]string, name string, def int, screenName, pkg string, positive bool) int {
	raw, ok := props[name]
	if !ok {
		d.warn(Warning{
			Kind:     WarnMissingProperty,
			Screen:   screenName,
			Package:  pkg,
			Property: name,
			Err:      fmt.Errorf("%w: using %d", ErrMissingProperty, def),
		})
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		d.warn(Warning{
			Kind:     WarnInvalidProperty,
			Screen:   screenName,
			Package:  pkg,
			Property: name,
			Err:      fmt.Errorf("%w: %q is not an integer, using %d", ErrInvalidProperty, raw, def),
		})
		return def
	}
	if positive && v < 1 {
		d.warn(Warning{
			Kind:     WarnInvalidProperty,
			Screen:   screenName,
			Package:  pkg,
			Property: name,
			Err:      fmt.Errorf("%w: %d is not positive, using %d", ErrInvalidProperty, v, def),
		})
		return def
	}
	return v
}

func (d *decoder) boolProp(props map[string]string, name string) bool {
	raw, ok := props[name]
	if !ok {
		d.warn(Warning{
			Kind:     WarnMissingProperty,
			Property: name,
			Err:      fmt.Errorf("%w: using False", ErrMissingProperty),
		})
		return false
	}
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	default:
		d.warn(Warning{
			Kind:     WarnInvalidProperty,
			Property: name,
			Err:      fmt.Errorf("%w: %q is not True or False, using False", ErrInvalidProperty, raw),
		})
		return false
	}
}
