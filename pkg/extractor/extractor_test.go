package extractor

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/tsxify/pkg/diagnostics"
	"github.com/gnana997/tsxify/pkg/parser"
)

func extract(t *testing.T, name, src string) ([]*ComponentDescriptor, []diagnostics.Diagnostic) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	pm := parser.NewParserManager(logger)
	t.Cleanup(func() { pm.Close() })

	tree, err := pm.ParseUnit(name, []byte(src))
	require.NoError(t, err)
	t.Cleanup(tree.Close)

	diags := diagnostics.NewCollector()
	components := NewExtractor(logger).Extract(tree, diags)
	return components, diags.Diagnostics()
}

func TestExtractFunctionDeclaration(t *testing.T) {
	src := `import React from "react";

export function Card({ title, subtitle = "none", onClose }) {
  return (
    <div>
      <h1>{title}</h1>
      {subtitle && <h2>{subtitle}</h2>}
      <button onClick={() => onClose()}>x</button>
    </div>
  );
}
`
	components, diags := extract(t, "Card.jsx", src)
	require.Len(t, components, 1)
	assert.Empty(t, diags)

	card := components[0]
	assert.Equal(t, "Card", card.Name)
	assert.Equal(t, FormFunction, card.Form)
	assert.Equal(t, BagDestructured, card.Bag.Kind)
	assert.Equal(t, "export_statement", card.Statement.Kind())
	assert.Equal(t, 3, card.Line)
	assert.False(t, card.AlreadyTyped)
	assert.Equal(t, []string{"title", "subtitle", "onClose"}, card.Properties())

	// Three bindings, then reads of title, subtitle (twice) and onClose.
	require.Len(t, card.UsageSites, 7)
	assert.True(t, card.UsageSites[0].IsBinding())
	assert.NotNil(t, card.UsageSites[1].Default, "subtitle has a default")
	assert.False(t, card.UsageSites[3].IsBinding())
}

func TestExtractNamedBagArrow(t *testing.T) {
	src := `const Badge = props => <span className={props.tone}>{props.label}</span>;
`
	components, _ := extract(t, "Badge.jsx", src)
	require.Len(t, components, 1)

	badge := components[0]
	assert.Equal(t, FormArrow, badge.Form)
	assert.Equal(t, BagNamed, badge.Bag.Kind)
	assert.Equal(t, "props", badge.Bag.Name)
	assert.True(t, badge.Bag.Bare)
	assert.Equal(t, []string{"tone", "label"}, badge.Properties())
	assert.Equal(t, "lexical_declaration", badge.Statement.Kind())
}

func TestExtractNamedBagWithBodyDestructuring(t *testing.T) {
	src := `function List(props) {
  const { items, empty = "Nothing" } = props;
  if (!items.length) return <p>{empty}</p>;
  return <ul>{items.map((i) => <li key={i}>{i}</li>)}</ul>;
}
`
	components, _ := extract(t, "List.jsx", src)
	require.Len(t, components, 1)
	assert.Equal(t, []string{"items", "empty"}, components[0].Properties())
	assert.False(t, components[0].Bag.Bare)
}

func TestExtractIgnoresShadowedLocals(t *testing.T) {
	src := `function List({ item, items }) {
  return <ul>{items.map(item => <li>{item.name}</li>)}</ul>;
}

function Form({ value, onChange }) {
  const handle = (e) => {
    const value = e.target;
    onChange(value.value);
  };
  try {
    handle();
  } catch (value) {
    console.log(value.message);
  }
  return <input value={value} onChange={handle} />;
}

function Tags(props) {
  return props.tags.map((props) => <i>{props.label}</i>);
}
`
	components, _ := extract(t, "List.jsx", src)
	require.Len(t, components, 3)

	refs := func(d *ComponentDescriptor, prop string) int {
		n := 0
		for _, site := range d.UsageSites {
			if site.Property == prop && !site.IsBinding() {
				n++
			}
		}
		return n
	}

	list := components[0]
	assert.Equal(t, 0, refs(list, "item"), "inner arrow parameter hides item")
	assert.Equal(t, 1, refs(list, "items"))

	form := components[1]
	require.Equal(t, 1, refs(form, "value"), "only the JSX attribute reads the prop")
	for _, site := range form.UsageSites {
		if site.Property == "value" && !site.IsBinding() {
			assert.Equal(t, 15, site.Line)
		}
	}
	assert.Equal(t, 1, refs(form, "onChange"))

	tags := components[2]
	assert.Equal(t, []string{"tags"}, tags.Properties())
}

func TestExtractWrappers(t *testing.T) {
	src := `import { memo, forwardRef } from "react";

export const Fancy = memo(({ label }) => <b>{label}</b>);
export const Input = React.forwardRef(function Input({ value }, ref) {
  return <input ref={ref} value={value} />;
});
const Both = memo(forwardRef((props, ref) => <i ref={ref}>{props.text}</i>));
`
	components, _ := extract(t, "wrappers.jsx", src)
	require.Len(t, components, 3)

	assert.Equal(t, "Fancy", components[0].Name)
	assert.Equal(t, FormMemo, components[0].Form)
	assert.Equal(t, "Input", components[1].Name)
	assert.Equal(t, FormForwardRef, components[1].Form)
	assert.Equal(t, []string{"value"}, components[1].Properties())
	assert.Equal(t, FormForwardRef, components[2].Form)
	assert.Equal(t, []string{"text"}, components[2].Properties())
}

func TestExtractClassComponent(t *testing.T) {
	src := `class Counter extends React.Component {
  render() {
    const { step } = this.props;
    return <button>{this.props.label} +{step}</button>;
  }
}
`
	components, _ := extract(t, "Counter.jsx", src)
	require.Len(t, components, 1)

	counter := components[0]
	assert.Equal(t, FormClass, counter.Form)
	assert.Equal(t, BagThisProps, counter.Bag.Kind)
	require.NotNil(t, counter.Heritage)
	assert.Equal(t, "React.Component", string(counter.Heritage.Utf8Text([]byte(src))))
	assert.Equal(t, []string{"step", "label"}, counter.Properties())
}

func TestExtractDefaultExportNames(t *testing.T) {
	components, _ := extract(t, "src/date-picker.jsx", "export default ({ value }) => <input value={value} />;\n")
	require.Len(t, components, 1)
	assert.Equal(t, "DatePicker", components[0].Name)

	components, _ = extract(t, "x.jsx", "export default function app() { return <main />; }\n")
	require.Len(t, components, 1)
	assert.Equal(t, "app", components[0].Name, "default exports keep lowercase names")
}

func TestExtractSkipsNonComponents(t *testing.T) {
	src := `function helper({ a }) { return <div>{a}</div>; }
function Compute({ a }) { return a * 2; }
function Factory() {
  const render = () => <div />;
  return render;
}
function Pair(a, b) { return <div>{a}{b}</div>; }
class Store extends Base { render() { return <div />; } }
const VALUE = 3;
`
	components, diags := extract(t, "misc.jsx", src)
	assert.Empty(t, components)
	assert.Empty(t, diags)
}

func TestExtractUnsupportedPatternDoesNotAbortSiblings(t *testing.T) {
	src := `function Grid([first, second]) { return <div>{first}{second}</div>; }
function Cell({ value }) { return <td>{value}</td>; }
`
	components, diags := extract(t, "grid.jsx", src)
	require.Len(t, components, 1)
	assert.Equal(t, "Cell", components[0].Name)

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostics.SeverityWarning, diags[0].Severity)
	assert.Equal(t, diagnostics.CodeUnsupportedConstruct, diags[0].Code)
	assert.Equal(t, "Grid", diags[0].Component)
	assert.Equal(t, 1, diags[0].Line)
}

func TestExtractRenamedAndRestEntries(t *testing.T) {
	src := `const Heading = ({ title: text, "aria-label": aria, level: lvl = 1, ...rest }) => (
  <h1 aria-label={aria} data-level={lvl} {...rest}>{text}</h1>
);
`
	components, _ := extract(t, "Heading.jsx", src)
	require.Len(t, components, 1)

	h := components[0]
	assert.True(t, h.Bag.Open)
	assert.Equal(t, []string{"title", "aria-label", "level"}, h.Properties())

	var refs []string
	for _, s := range h.UsageSites {
		if !s.IsBinding() {
			refs = append(refs, s.Property)
		}
	}
	assert.Equal(t, []string{"aria-label", "level", "title"}, refs)
}

func TestExtractComputedKeyWarns(t *testing.T) {
	src := `const K = "x";
function Dyn({ [K]: v, w }) { return <p>{v}{w}</p>; }
`
	components, diags := extract(t, "dyn.jsx", src)
	require.Len(t, components, 1)
	assert.Equal(t, []string{"w"}, components[0].Properties())
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostics.CodeUnsupportedConstruct, diags[0].Code)
}

func TestExtractNoInputBag(t *testing.T) {
	components, _ := extract(t, "Logo.jsx", "export const Logo = () => <svg />;\n")
	require.Len(t, components, 1)
	assert.Equal(t, BagNone, components[0].Bag.Kind)
	assert.Empty(t, components[0].UsageSites)
}

func TestExtractAlreadyTyped(t *testing.T) {
	src := `interface TagProps { label: string }
export function Tag({ label }: TagProps) { return <em>{label}</em>; }
class Box extends React.Component<BoxProps> { render() { return <div />; } }
`
	components, _ := extract(t, "Tag.tsx", src)
	require.Len(t, components, 2)
	assert.True(t, components[0].AlreadyTyped)
	assert.True(t, components[1].AlreadyTyped)
}

func TestDefaultExportName(t *testing.T) {
	tests := map[string]string{
		"date-picker.jsx":    "DatePicker",
		"dir/user_card.jsx":  "UserCard",
		"index.jsx":          "Index",
		"":                   "Component",
		"404.jsx":            "Component404",
		"already Pascal.jsx": "AlreadyPascal",
	}
	for in, want := range tests {
		assert.Equal(t, want, defaultExportName(in), in)
	}
}
