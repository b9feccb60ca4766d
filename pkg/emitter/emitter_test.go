package emitter

import (
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/tsxify/pkg/config"
	"github.com/gnana997/tsxify/pkg/diagnostics"
	"github.com/gnana997/tsxify/pkg/extractor"
	"github.com/gnana997/tsxify/pkg/inference"
	"github.com/gnana997/tsxify/pkg/parser"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

func TestEmitDeclaration(t *testing.T) {
	shape := &inference.Shape{
		Properties: []inference.Property{
			{Name: "title", Kind: inference.KindPrimitive, Primitive: "string"},
			{Name: "items", Kind: inference.KindArray, Optional: true},
			{Name: "onClose", Kind: inference.KindFunction},
			{Name: "data-id", Kind: inference.KindUnknown},
		},
		Open: true,
	}

	decl, ok := NewEmitter(testLogger).EmitDeclaration("Card", shape, config.Default())
	require.True(t, ok)
	assert.Equal(t, "CardProps", decl.Name)
	assert.Equal(t, `interface CardProps {
  title: string;
  items?: any[];
  onClose: (...args: any[]) => any;
  "data-id": any;
  [key: string]: any;
}`, decl.Text)
}

func TestEmitDeclarationNaming(t *testing.T) {
	shape := &inference.Shape{Properties: []inference.Property{{Name: "a", Kind: inference.KindUnknown}}}

	tests := []struct {
		name string
		cfg  config.ConversionConfig
		want string
	}{
		{"default suffix", config.Default(), "WidgetProps"},
		{"custom affixes", config.ConversionConfig{
			CustomDeclarationNaming: true,
			DeclarationPrefix:       "I",
			DeclarationSuffix:       "Shape",
		}, "IWidgetShape"},
		{"affixes ignored without custom naming", config.ConversionConfig{
			DeclarationPrefix: "I",
			DeclarationSuffix: "Shape",
		}, "WidgetProps"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decl, ok := NewEmitter(testLogger).EmitDeclaration("Widget", shape, tt.cfg)
			require.True(t, ok)
			assert.Equal(t, tt.want, decl.Name)
			assert.Contains(t, decl.Text, "interface "+tt.want+" {")
		})
	}
}

func TestEmitDeclarationEmptyShape(t *testing.T) {
	e := NewEmitter(testLogger)

	_, ok := e.EmitDeclaration("Empty", &inference.Shape{}, config.Default())
	assert.False(t, ok)

	_, ok = e.EmitDeclaration("Empty", nil, config.Default())
	assert.False(t, ok)

	decl, ok := e.EmitDeclaration("Spread", &inference.Shape{Open: true}, config.Default())
	require.True(t, ok)
	assert.Equal(t, "interface SpreadProps {\n  [key: string]: any;\n}", decl.Text)
}

func TestEmitDeclarationDeterministic(t *testing.T) {
	shape := &inference.Shape{Properties: []inference.Property{
		{Name: "b", Kind: inference.KindObject},
		{Name: "a", Kind: inference.KindPrimitive, Primitive: "number", Optional: true},
	}}
	e := NewEmitter(testLogger)
	first, _ := e.EmitDeclaration("X", shape, config.Default())
	for i := 0; i < 5; i++ {
		again, _ := e.EmitDeclaration("X", shape, config.Default())
		assert.Equal(t, first, again)
	}
	// Shape order, not alphabetical.
	assert.Less(t, strings.Index(first.Text, "b:"), strings.Index(first.Text, "a?:"))
}

func parseComponent(t *testing.T, name, src string) (*parser.SyntaxTree, *extractor.ComponentDescriptor) {
	t.Helper()

	pm := parser.NewParserManager(testLogger)
	t.Cleanup(func() { pm.Close() })

	tree, err := pm.ParseUnit(name, []byte(src))
	require.NoError(t, err)
	t.Cleanup(tree.Close)

	components := extractor.NewExtractor(testLogger).Extract(tree, diagnostics.NewCollector())
	require.Len(t, components, 1)
	return tree, components[0]
}

// apply applies sorted, non-overlapping edits.
func apply(src []byte, edits []TextEdit) string {
	var out []byte
	last := uint(0)
	for _, e := range edits {
		out = append(out, src[last:e.Start]...)
		out = append(out, e.Text...)
		last = e.End
	}
	return string(append(out, src[last:]...))
}

func TestAnnotations(t *testing.T) {
	tests := []struct {
		name string
		file string
		src  string
		want string
	}{
		{
			name: "destructured",
			file: "Card.jsx",
			src:  "function Card({ title }) { return <h1>{title}</h1>; }\n",
			want: "function Card({ title }: CardProps) { return <h1>{title}</h1>; }\n",
		},
		{
			name: "named",
			file: "List.jsx",
			src:  "const List = function (props) { return <ul>{props.items}</ul>; };\n",
			want: "const List = function (props: ListProps) { return <ul>{props.items}</ul>; };\n",
		},
		{
			name: "bare arrow parameter",
			file: "Badge.jsx",
			src:  "const Badge = props => <span>{props.label}</span>;\n",
			want: "const Badge = (props: BadgeProps) => <span>{props.label}</span>;\n",
		},
		{
			name: "class heritage",
			file: "Clock.jsx",
			src:  "class Clock extends React.Component {\n  render() { return <p>{this.props.time}</p>; }\n}\n",
			want: "class Clock extends React.Component<ClockProps> {\n  render() { return <p>{this.props.time}</p>; }\n}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, desc := parseComponent(t, tt.file, tt.src)
			edits := NewEmitter(testLogger).Annotations(tree, desc, config.Default().DeclarationName(desc.Name), nil)
			require.Len(t, edits, 1)
			assert.Equal(t, tt.want, apply(tree.Source, edits))
		})
	}
}

func TestAnnotationsSkipTypedBag(t *testing.T) {
	tree, desc := parseComponent(t, "Card.tsx",
		"function Card({ title }: { title: string }) { return <h1>{title}</h1>; }\n")
	require.True(t, desc.AlreadyTyped)

	edits := NewEmitter(testLogger).Annotations(tree, desc, "CardProps", nil)
	assert.Empty(t, edits)
}

func TestAnnotationsStateHints(t *testing.T) {
	src := "function Counter({ start = 0 }) {\n  const [n, setN] = useState(start);\n  return <b>{n}</b>;\n}\n"
	tree, desc := parseComponent(t, "Counter.jsx", src)

	var hint inference.StateHint
	parser.Walk(desc.Body, func(n *ts.Node) bool {
		if n.Kind() == "call_expression" {
			hint = inference.StateHint{Hook: "useState", Callee: n.ChildByFieldName("function"), TypeArgument: "number"}
			return false
		}
		return true
	})
	require.NotNil(t, hint.Callee)

	edits := NewEmitter(testLogger).Annotations(tree, desc, "CounterProps", []inference.StateHint{hint})
	require.Len(t, edits, 2)
	assert.Less(t, edits[0].Start, edits[1].Start)
	assert.Equal(t,
		"function Counter({ start = 0 }: CounterProps) {\n  const [n, setN] = useState<number>(start);\n  return <b>{n}</b>;\n}\n",
		apply(tree.Source, edits))
}
