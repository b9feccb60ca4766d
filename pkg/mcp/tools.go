package mcp

import "github.com/mark3labs/mcp-go/mcp"

const (
	toolConvertCode  = "convert_code"
	toolConvertBatch = "convert_batch"
	toolInspectCode  = "inspect_code"
)

// ToolNames lists the registered tools in registration order.
func ToolNames() []string {
	return []string{toolConvertCode, toolConvertBatch, toolInspectCode}
}

// configOptions are the per-call overrides of the server's conversion
// defaults, shared by both conversion tools.
func configOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("conversion_level",
			mcp.Description("Inference level"),
			mcp.Enum("basic", "standard", "advanced"),
		),
		mcp.WithBoolean("preserve_formatting",
			mcp.Description("Keep the original layout and only insert declarations and annotations"),
		),
		mcp.WithBoolean("include_doc_comments",
			mcp.Description("Copy a component's doc comment onto its generated declaration"),
		),
		mcp.WithBoolean("custom_declaration_naming",
			mcp.Description("Name declarations <prefix><Component><suffix> instead of <Component>Props"),
		),
		mcp.WithString("declaration_prefix", mcp.Description("Declaration name prefix, e.g. \"I\"")),
		mcp.WithString("declaration_suffix", mcp.Description("Declaration name suffix, e.g. \"Shape\"")),
	}
}

func convertCodeTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Convert one untyped React component file (JSX) to TSX. " +
			"Returns the converted code and diagnostics as JSON."),
		mcp.WithString("code", mcp.Required(), mcp.Description("Source text of the file")),
		mcp.WithString("filename", mcp.Description("File name used for grammar selection and output naming (default Component.jsx)")),
		mcp.WithReadOnlyHintAnnotation(true),
	}
	return mcp.NewTool(toolConvertCode, append(opts, configOptions()...)...)
}

func convertBatchTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Convert several files at once. Failures are reported per file. " +
			"When more than one file converts, the response carries a base64 zip archive."),
		mcp.WithArray("files",
			mcp.Required(),
			mcp.Description("Files to convert"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":    map[string]any{"type": "string"},
					"content": map[string]any{"type": "string"},
				},
				"required": []string{"name", "content"},
			}),
		),
		mcp.WithBoolean("include_archive", mcp.Description("Include the base64 archive (default true)")),
		mcp.WithReadOnlyHintAnnotation(true),
	}
	return mcp.NewTool(toolConvertBatch, append(opts, configOptions()...)...)
}

func inspectCodeTool() mcp.Tool {
	return mcp.NewTool(toolInspectCode,
		mcp.WithDescription("Summarize the components a file renders: elements, component usages with attributes, imports."),
		mcp.WithString("code", mcp.Required(), mcp.Description("Source text of the file")),
		mcp.WithString("filename", mcp.Description("File name used for grammar selection (default Component.jsx)")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}
