package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeStructure(t *testing.T) {
	v, _ := testValidator(t)

	code := `
import { Button } from "@/components/ui/button"
import { Dialog, DialogContent, DialogTitle } from "@/components/ui/dialog"

export default function Page() {
  return (
    <div>
      <Button variant="default" size="lg">Click</Button>
      <Dialog>
        <DialogContent>
          <DialogTitle>Hello</DialogTitle>
        </DialogContent>
      </Dialog>
    </div>
  )
}
`
	summary := v.Summarize("Page.jsx", code)
	assert.Empty(t, summary.ParseError)
	assert.Equal(t, 5, summary.Elements)

	require.Len(t, summary.Components, 4)
	assert.Equal(t, "Button", summary.Components[0].Name)
	assert.Equal(t, []string{"variant", "size"}, summary.Components[0].Attributes)
	assert.Equal(t, "Dialog", summary.Components[1].Name)
	assert.Equal(t, 1, summary.Components[1].Children)
	assert.Equal(t, 1, summary.Components[2].Children)
	assert.Equal(t, 0, summary.Components[3].Children)

	assert.Equal(t, []string{"@/components/ui/button", "@/components/ui/dialog"}, summary.Imports)
	assert.Greater(t, summary.LineCount, 10)
}

func TestSummarizeParseError(t *testing.T) {
	v, _ := testValidator(t)

	summary := v.Summarize("Broken.jsx", "function Broken() { return <div>; }")
	assert.NotEmpty(t, summary.ParseError)
	assert.Empty(t, summary.Components)
	assert.Equal(t, 1, summary.LineCount)
}
