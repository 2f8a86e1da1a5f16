package mcpserver

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"

	"github.com/bytedance/sonic"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/cristalexdent/clinicadmin/internal/resource"
	"github.com/cristalexdent/clinicadmin/internal/transfer"
	"github.com/cristalexdent/clinicadmin/internal/validate"
)

// registerTools registers every clinic tool with the MCP server.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("list-resources",
			mcp.WithDescription("List the clinic content types with their wizard steps and fields"),
		),
		s.handleListResources,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("generate-template",
			mcp.WithDescription("Generate the blank offline template of a resource. XLSX templates are returned base64 encoded"),
			mcp.WithString("resource", mcp.Required(),
				mcp.Description("Resource name, e.g. service or blog-article"),
			),
			mcp.WithString("format",
				mcp.Description("Template format: json (default), markdown or xlsx"),
			),
		),
		s.handleGenerateTemplate,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("validate-record",
			mcp.WithDescription("Validate a record against the rules of one wizard step"),
			mcp.WithString("resource", mcp.Required(),
				mcp.Description("Resource name"),
			),
			mcp.WithNumber("step",
				mcp.Description("Zero based step index (default 0)"),
			),
			mcp.WithString("record", mcp.Required(),
				mcp.Description("Record as a JSON object"),
			),
		),
		s.handleValidateRecord,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("parse-import",
			mcp.WithDescription("Parse the content of a filled-in .json or .md template into a record"),
			mcp.WithString("resource", mcp.Required(),
				mcp.Description("Resource name"),
			),
			mcp.WithString("filename", mcp.Required(),
				mcp.Description("File name; the extension selects the parser"),
			),
			mcp.WithString("content", mcp.Required(),
				mcp.Description("File content"),
			),
		),
		s.handleParseImport,
	)
}

type stepInfo struct {
	Label  string   `json:"label"`
	Fields []string `json:"fields,omitempty"`
}

type resourceInfo struct {
	Name     string     `json:"name"`
	Title    string     `json:"title"`
	Endpoint string     `json:"endpoint"`
	Steps    []stepInfo `json:"steps"`
	Template []string   `json:"template"`
}

// handleListResources describes the catalog.
func (s *Server) handleListResources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	all := resource.All()
	out := make([]resourceInfo, 0, len(all))
	for _, res := range all {
		info := resourceInfo{
			Name:     res.Name,
			Title:    res.Title,
			Endpoint: res.Endpoint,
			Template: res.TemplateFields(s.locales),
		}
		for _, st := range res.Steps(s.locales) {
			info.Steps = append(info.Steps, stepInfo{Label: st.Label, Fields: st.Fields})
		}
		out = append(out, info)
	}
	return jsonResult(out)
}

// handleGenerateTemplate renders a blank template.
func (s *Server) handleGenerateTemplate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	res, errResult := lookupResource(args)
	if errResult != nil {
		return errResult, nil
	}

	rawFormat, _ := args["format"].(string)
	format, err := transfer.ParseFormat(rawFormat)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := transfer.Template(res, format, s.locales)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to generate template: %v", err)), nil
	}
	if format == transfer.FormatXLSX {
		return mcp.NewToolResultText(base64.StdEncoding.EncodeToString(data)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

type validation struct {
	Valid  bool            `json:"valid"`
	Step   string          `json:"step"`
	Errors validate.Errors `json:"errors,omitempty"`
}

// handleValidateRecord checks a record against one step.
func (s *Server) handleValidateRecord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	res, errResult := lookupResource(args)
	if errResult != nil {
		return errResult, nil
	}

	steps := res.Steps(s.locales)
	step := 0
	if raw, ok := args["step"]; ok && raw != nil {
		n, ok := raw.(float64)
		if !ok || n != math.Trunc(n) {
			return mcp.NewToolResultError("'step' must be an integer"), nil
		}
		step = int(n)
	}
	if step < 0 || step >= len(steps) {
		return mcp.NewToolResultError(fmt.Sprintf("step %d out of range (0-%d)", step, len(steps)-1)), nil
	}

	text, ok := args["record"].(string)
	if !ok || text == "" {
		return mcp.NewToolResultError("missing 'record' parameter"), nil
	}
	raw, err := transfer.ParseJSON([]byte(text))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	errs := validate.Validate(steps[step].Rules, res.Decode(raw))
	return jsonResult(validation{
		Valid:  errs.OK(),
		Step:   steps[step].Label,
		Errors: errs,
	})
}

// handleParseImport runs the importer on inline content.
func (s *Server) handleParseImport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	res, errResult := lookupResource(args)
	if errResult != nil {
		return errResult, nil
	}

	filename, ok := args["filename"].(string)
	if !ok || filename == "" {
		return mcp.NewToolResultError("missing 'filename' parameter"), nil
	}
	content, ok := args["content"].(string)
	if !ok {
		return mcp.NewToolResultError("missing 'content' parameter"), nil
	}

	d, err := transfer.Import(res, filename, []byte(content), transfer.Options{StripHTML: s.stripHTML})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(d)
}

func lookupResource(args map[string]any) (resource.Resource, *mcp.CallToolResult) {
	if args == nil {
		return resource.Resource{}, mcp.NewToolResultError("no arguments provided")
	}
	name, ok := args["resource"].(string)
	if !ok || name == "" {
		return resource.Resource{}, mcp.NewToolResultError("missing 'resource' parameter")
	}
	res, err := resource.Lookup(name)
	if err != nil {
		return resource.Resource{}, mcp.NewToolResultError(err.Error())
	}
	return res, nil
}

// jsonResult encodes v with sorted keys so output is stable.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
