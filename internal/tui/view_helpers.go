package tui

import (
	"fmt"
	"strings"

	"github.com/MKhiriev/go-menu-mirror/internal/menu"
	"github.com/MKhiriev/go-menu-mirror/models"
)

// row is one rendered line of the flattened menu tree.
type row struct {
	id        int
	depth     int
	label     string
	toggle    string
	enabled   bool
	separator bool
	submenu   bool
}

// flattenRows turns the snapshot into display rows in depth-first order. The
// root itself is structural and never rendered; hidden items and their
// subtrees are dropped.
func flattenRows(root menu.NodeSnapshot) []row {
	var rows []row
	var walk func(children []menu.NodeSnapshot, depth int)
	walk = func(children []menu.NodeSnapshot, depth int) {
		for _, child := range children {
			if !propBool(child, models.PropertyVisible, true) {
				continue
			}
			rows = append(rows, row{
				id:        child.ID,
				depth:     depth,
				label:     child.Label(),
				toggle:    toggleDecoration(child),
				enabled:   propBool(child, models.PropertyEnabled, true),
				separator: propString(child, models.PropertyType) == "separator",
				submenu:   propString(child, models.PropertyChildrenDisplay) == "submenu",
			})
			walk(child.Children, depth+1)
		}
	}
	walk(root.Children, 0)
	return rows
}

func renderRow(r row, selected bool) string {
	prefix := "  "
	if selected {
		prefix = "> "
	}
	indent := strings.Repeat("  ", r.depth)

	if r.separator {
		return prefix + indent + separatorStyle.Render(strings.Repeat("-", 24))
	}

	label := r.label
	if label == "" {
		label = fmt.Sprintf("(item %d)", r.id)
	}
	line := prefix + indent + r.toggle + label
	if r.submenu {
		line += " >"
	}
	if !r.enabled {
		return disabledStyle.Render(line)
	}
	return line
}

func toggleDecoration(s menu.NodeSnapshot) string {
	checked := propInt(s, models.PropertyToggleState) > 0
	switch propString(s, models.PropertyToggleType) {
	case "checkmark":
		if checked {
			return "[x] "
		}
		return "[ ] "
	case "radio":
		if checked {
			return "(*) "
		}
		return "( ) "
	}
	return ""
}

func propString(s menu.NodeSnapshot, key string) string {
	if v, ok := s.Properties[key]; ok {
		if str, ok := v.AsString(); ok {
			return str
		}
	}
	return ""
}

func propBool(s menu.NodeSnapshot, key string, def bool) bool {
	if v, ok := s.Properties[key]; ok {
		if b, ok := v.AsBool(); ok {
			return b
		}
	}
	return def
}

func propInt(s menu.NodeSnapshot, key string) int64 {
	if v, ok := s.Properties[key]; ok {
		if n, ok := v.AsInt(); ok {
			return n
		}
	}
	return 0
}
