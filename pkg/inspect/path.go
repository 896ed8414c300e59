// Package inspect provides manifest inspection and property manipulation
// utilities.
//
// The inspect package offers a unified interface for:
//   - Parsing path expressions (e.g., "extension[2]/element[0]/@id")
//   - Resolving paths against a manifest tree
//   - Reading and writing properties and attributes
//   - Formatting output for display
package inspect

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/manifestkit/manifest-go/pkg/model"
)

// Path errors.
var (
	ErrEmptyPath     = errors.New("empty path")
	ErrInvalidPath   = errors.New("invalid path format")
	ErrInvalidNumber = errors.New("invalid numeric value in path")
	ErrUnknownStep   = errors.New("unknown path step")
)

// RootPath is the path expression selecting the manifest root.
const RootPath = "."

// Step selects one child: the Index-th node of its kind list, or, when Key is
// set, the first node of that kind whose KeyOf equals Key.
type Step struct {
	Kind  model.NodeKind
	Index int
	Key   string
}

// String returns the step in path syntax.
func (s Step) String() string {
	if s.Key != "" {
		return StepName(s.Kind) + "[" + s.Key + "]"
	}
	return StepName(s.Kind) + "[" + strconv.Itoa(s.Index) + "]"
}

// Path represents a parsed inspection path.
// Format: step[/step...][/@property] or "." for the root.
type Path struct {
	// Steps lead from the root to the selected node.
	Steps []Step

	// Property is the trailing @name, empty when the path selects a node.
	// For elements it names an attribute, otherwise a node property.
	Property string

	// Raw stores the original input string.
	Raw string
}

// ParsePath parses a path string into a Path struct.
//
// Supported formats:
//   - "."                            - the root
//   - "@version"                     - a root property
//   - "extension[1]"                 - a child by index
//   - "extension-point[views]"       - a child by id, library path or tag
//   - "ext[0]/el[2]/@class"          - an element attribute, using aliases
//
// Keys may contain '/'; brackets delimit them.
func ParsePath(input string) (*Path, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyPath
	}

	p := &Path{Raw: input}
	if input == RootPath {
		return p, nil
	}
	if strings.HasPrefix(input, "/") {
		return nil, ErrInvalidPath
	}

	rest := input
	for rest != "" {
		if strings.HasPrefix(rest, "@") {
			p.Property = rest[1:]
			if p.Property == "" || strings.ContainsAny(p.Property, "/[]") {
				return nil, fmt.Errorf("%w: property %q", ErrInvalidPath, rest)
			}
			return p, nil
		}

		step, next, err := parseStep(rest)
		if err != nil {
			return nil, err
		}
		p.Steps = append(p.Steps, step)

		switch {
		case next == "":
			rest = ""
		case strings.HasPrefix(next, "/") && len(next) > 1:
			rest = next[1:]
		default:
			return nil, fmt.Errorf("%w: unexpected %q", ErrInvalidPath, next)
		}
	}
	return p, nil
}

// parseStep reads name[selector] from the front of s.
func parseStep(s string) (Step, string, error) {
	open := strings.IndexByte(s, '[')
	if open <= 0 {
		return Step{}, "", fmt.Errorf("%w: missing [index] in %q", ErrInvalidPath, s)
	}
	if slash := strings.IndexByte(s, '/'); slash >= 0 && slash < open {
		return Step{}, "", fmt.Errorf("%w: missing [index] in %q", ErrInvalidPath, s[:slash])
	}
	closing := strings.IndexByte(s[open:], ']')
	if closing < 0 {
		return Step{}, "", fmt.Errorf("%w: unterminated [ in %q", ErrInvalidPath, s)
	}
	closing += open

	name := s[:open]
	kind, ok := ResolveStepName(name)
	if !ok {
		return Step{}, "", fmt.Errorf("%w: %s", ErrUnknownStep, name)
	}

	sel := s[open+1 : closing]
	if sel == "" {
		return Step{}, "", fmt.Errorf("%w: empty selector for %s", ErrInvalidPath, name)
	}
	step := Step{Kind: kind}
	if isDigits(sel) {
		n, err := strconv.Atoi(sel)
		if err != nil {
			return Step{}, "", fmt.Errorf("%w: %s", ErrInvalidNumber, sel)
		}
		step.Index = n
	} else {
		step.Key = sel
	}
	return step, s[closing+1:], nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// String returns the path as a string.
func (p *Path) String() string {
	if len(p.Steps) == 0 && p.Property == "" {
		return RootPath
	}

	var sb strings.Builder
	for i, s := range p.Steps {
		if i > 0 {
			sb.WriteString("/")
		}
		sb.WriteString(s.String())
	}
	if p.Property != "" {
		if len(p.Steps) > 0 {
			sb.WriteString("/")
		}
		sb.WriteString("@")
		sb.WriteString(p.Property)
	}
	return sb.String()
}

// NodePath returns p without its trailing property.
func (p *Path) NodePath() *Path {
	return &Path{Steps: p.Steps, Raw: p.Raw}
}

// PathOf returns the index-based path of n. Detached nodes yield the path
// relative to the top of their detached subtree.
func PathOf(n model.Node) *Path {
	var steps []Step
	for n != nil {
		parent := n.Parent()
		if parent == nil {
			break
		}
		c, ok := parent.(model.Container)
		if !ok {
			break
		}
		steps = append(steps, Step{Kind: n.Kind(), Index: c.IndexOf(n)})
		n = parent
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	p := &Path{Steps: steps}
	p.Raw = p.String()
	return p
}
