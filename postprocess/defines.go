package postprocess

import (
	"strings"
)

// Defines is an ordered set of shader definitions (name, optional value).
// The zero value is an empty set ready to use.
type Defines struct {
	names  []string
	values map[string]string
}

// ParseDefines parses "#define NAME [VALUE]" lines. Other lines are ignored.
func ParseDefines(src string) Defines {
	var d Defines
	for _, line := range strings.Split(src, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "#define" {
			continue
		}
		d.Set(fields[1], strings.Join(fields[2:], " "))
	}
	return d
}

// Set adds name or replaces its value. A new name goes to the end.
func (d *Defines) Set(name, value string) {
	if d.values == nil {
		d.values = make(map[string]string)
	}
	if _, ok := d.values[name]; !ok {
		d.names = append(d.names, name)
	}
	d.values[name] = value
}

// Delete removes name.
func (d *Defines) Delete(name string) {
	if _, ok := d.values[name]; !ok {
		return
	}
	delete(d.values, name)
	for i, n := range d.names {
		if n == name {
			d.names = append(d.names[:i:i], d.names[i+1:]...)
			break
		}
	}
}

// Get returns the value of name and whether it is defined.
func (d Defines) Get(name string) (string, bool) {
	v, ok := d.values[name]
	return v, ok
}

// Has reports whether name is defined.
func (d Defines) Has(name string) bool {
	_, ok := d.values[name]
	return ok
}

// Len returns the number of definitions.
func (d Defines) Len() int { return len(d.names) }

// Names returns the defined names in insertion order.
func (d Defines) Names() []string {
	return append([]string(nil), d.names...)
}

// Clone returns an independent copy.
func (d Defines) Clone() Defines {
	var c Defines
	for _, n := range d.names {
		c.Set(n, d.values[n])
	}
	return c
}

// Union returns d with every definition of other added. Values from other
// win for names present in both.
func (d Defines) Union(other Defines) Defines {
	u := d.Clone()
	for _, n := range other.names {
		u.Set(n, other.values[n])
	}
	return u
}

// String renders the set as "#define NAME VALUE" lines.
func (d Defines) String() string {
	var sb strings.Builder
	for _, n := range d.names {
		sb.WriteString("#define ")
		sb.WriteString(n)
		if v := d.values[n]; v != "" {
			sb.WriteByte(' ')
			sb.WriteString(v)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
