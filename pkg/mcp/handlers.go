package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/tsxify/pkg/batch"
	"github.com/gnana997/tsxify/pkg/config"
	"github.com/gnana997/tsxify/pkg/converter"
)

const defaultFilename = "Component.jsx"

func (s *Server) handleConvertCode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := req.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cfg, err := s.conversionConfig(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	unit := converter.SourceUnit{Name: req.GetString("filename", defaultFilename), Text: code}
	result, err := s.conv.Convert(unit, cfg)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("conversion failed", err), nil
	}
	return jsonResult(result)
}

// batchResponse is the convert_batch payload.
type batchResponse struct {
	*batch.Result
	ArchiveName   string `json:"archive_name,omitempty"`
	ArchiveBase64 string `json:"archive_base64,omitempty"`
}

func (s *Server) handleConvertBatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	units, err := sourceUnits(req.GetArguments()["files"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cfg, err := s.conversionConfig(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.orch.ConvertAll(ctx, units, cfg)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("batch conversion failed", err), nil
	}

	resp := batchResponse{Result: result}
	if result.Archive != nil && req.GetBool("include_archive", true) {
		resp.ArchiveName = result.Archive.Name
		resp.ArchiveBase64 = base64.StdEncoding.EncodeToString(result.Archive.Data)
	}
	return jsonResult(resp)
}

func (s *Server) handleInspectCode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := req.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	summary := s.conv.Validator().Summarize(req.GetString("filename", defaultFilename), code)
	return jsonResult(summary)
}

// conversionConfig applies the request's overrides to the server defaults.
func (s *Server) conversionConfig(req mcp.CallToolRequest) (config.ConversionConfig, error) {
	cfg := s.defaults
	if level := req.GetString("conversion_level", ""); level != "" {
		parsed, err := config.ParseLevel(level)
		if err != nil {
			return cfg, err
		}
		cfg.Level = parsed
	}
	cfg.PreserveFormatting = req.GetBool("preserve_formatting", cfg.PreserveFormatting)
	cfg.IncludeDocComments = req.GetBool("include_doc_comments", cfg.IncludeDocComments)
	cfg.CustomDeclarationNaming = req.GetBool("custom_declaration_naming", cfg.CustomDeclarationNaming)
	cfg.DeclarationPrefix = req.GetString("declaration_prefix", cfg.DeclarationPrefix)
	cfg.DeclarationSuffix = req.GetString("declaration_suffix", cfg.DeclarationSuffix)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// sourceUnits decodes the files argument, an array of {name, content}.
func sourceUnits(raw any) ([]converter.SourceUnit, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("files must be an array of {name, content} objects")
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("files is empty")
	}

	units := make([]converter.SourceUnit, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("files[%d] is not an object", i)
		}
		name, _ := obj["name"].(string)
		content, ok := obj["content"].(string)
		if name == "" || !ok {
			return nil, fmt.Errorf("files[%d] needs a name and string content", i)
		}
		units = append(units, converter.SourceUnit{Name: name, Text: content})
	}
	return units, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
