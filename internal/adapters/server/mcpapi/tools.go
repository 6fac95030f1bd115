package mcpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/landcharge/devtrack/internal/adapters/server/common"
	"github.com/landcharge/devtrack/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// registerProjectTools registers project list/create tools.
func registerProjectTools(srv *mcpserver.MCPServer, steps *common.StepService) {
	srv.AddTool(
		mcp.NewTool(
			"devtrack.list_projects",
			mcp.WithDescription("List all tracked projects."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projects, err := steps.ListProjects(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			payload := make([]common.ProjectPayload, 0, len(projects))
			for _, p := range projects {
				payload = append(payload, common.ProjectPayloadFrom(p))
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"projects": payload})
			if err != nil {
				return nil, fmt.Errorf("encode list_projects result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"devtrack.create_project",
			mcp.WithDescription("Create a new project of a known project type."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Project name")),
			mcp.WithString("type", mcp.Required(), mcp.Description("Project type label")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			name, err := req.RequireString("name")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			projectType, err := req.RequireString("type")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			project, err := steps.CreateProject(ctx, common.CreateProjectRequest{Name: name, Type: projectType})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(common.ProjectPayloadFrom(project))
			if err != nil {
				return nil, fmt.Errorf("encode create_project result: %w", err)
			}
			return result, nil
		},
	)
}

// registerStepTools registers step list/create/update/bootstrap/reorder/delete tools.
func registerStepTools(srv *mcpserver.MCPServer, steps *common.StepService) {
	srv.AddTool(
		mcp.NewTool(
			"devtrack.list_steps",
			mcp.WithDescription("List a project's development steps in sequence order."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectID, err := req.RequireString("project_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			rows, err := steps.ListSteps(ctx, projectID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"steps": stepPayloads(rows)})
			if err != nil {
				return nil, fmt.Errorf("encode list_steps result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"devtrack.create_step",
			mcp.WithDescription("Append one custom step to a project."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("name", mcp.Required(), mcp.Description("Step name")),
			mcp.WithNumber("phase", mcp.Description("Phase ordinal (0 unset, 1 early, 2 mid, 3 late)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectID, err := req.RequireString("project_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			name, err := req.RequireString("name")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			row, err := steps.CreateStep(ctx, projectID, common.CreateStepRequest{
				Name:  name,
				Phase: req.GetInt("phase", 0),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(common.StepPayloadFrom(row))
			if err != nil {
				return nil, fmt.Errorf("encode create_step result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"devtrack.update_step",
			mcp.WithDescription("Apply a partial update to one step and return the resulting row. Fields is a JSON object keyed by column name; date fields accept YYYY-MM-DD or null to clear."),
			mcp.WithString("step_id", mcp.Required(), mcp.Description("Step identifier")),
			mcp.WithString("fields", mcp.Required(), mcp.Description("JSON object of changed fields")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			stepID, err := req.RequireString("step_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			fields, err := req.RequireString("fields")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			var raw map[string]json.RawMessage
			if err := json.Unmarshal([]byte(fields), &raw); err != nil {
				return mcp.NewToolResultError("invalid_request: fields must be a JSON object"), nil
			}
			patch, err := common.DecodeStepPatch(raw)
			if err != nil {
				return toolResultFromError(err), nil
			}
			row, err := steps.PatchStep(ctx, stepID, patch)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(common.StepPayloadFrom(row))
			if err != nil {
				return nil, fmt.Errorf("encode update_step result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"devtrack.bootstrap_steps",
			mcp.WithDescription("Seed a project's steps from its project-type template. Returns existing rows when the project already has steps."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectID, err := req.RequireString("project_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			rows, err := steps.BootstrapSteps(ctx, projectID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"steps": stepPayloads(rows)})
			if err != nil {
				return nil, fmt.Errorf("encode bootstrap_steps result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"devtrack.reorder_steps",
			mcp.WithDescription("Persist a new step order for one project."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("ids", mcp.Required(), mcp.Description("Comma-separated step ids in the desired order")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectID, err := req.RequireString("project_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			rawIDs, err := req.RequireString("ids")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			ids := splitIDs(rawIDs)
			if len(ids) == 0 {
				return mcp.NewToolResultError("invalid_request: ids must not be empty"), nil
			}
			if err := steps.ReorderSteps(ctx, projectID, ids); err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"reordered": len(ids)})
			if err != nil {
				return nil, fmt.Errorf("encode reorder_steps result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"devtrack.delete_step",
			mcp.WithDescription("Delete one custom step. Templated steps cannot be deleted."),
			mcp.WithString("step_id", mcp.Required(), mcp.Description("Step identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			stepID, err := req.RequireString("step_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := steps.DeleteStep(ctx, stepID); err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"deleted": stepID})
			if err != nil {
				return nil, fmt.Errorf("encode delete_step result: %w", err)
			}
			return result, nil
		},
	)
}

// registerContactTools registers contact list/create tools.
func registerContactTools(srv *mcpserver.MCPServer, steps *common.StepService) {
	srv.AddTool(
		mcp.NewTool(
			"devtrack.list_contacts",
			mcp.WithDescription("List a project's contact directory."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectID, err := req.RequireString("project_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			contacts, err := steps.ListContacts(ctx, projectID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			payload := make([]common.ContactPayload, 0, len(contacts))
			for _, c := range contacts {
				payload = append(payload, common.ContactPayloadFrom(c))
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"contacts": payload})
			if err != nil {
				return nil, fmt.Errorf("encode list_contacts result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"devtrack.create_contact",
			mcp.WithDescription("Add one contact to a project's directory."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("organization", mcp.Required(), mcp.Description("Organization name")),
			mcp.WithString("name", mcp.Description("Contact name")),
			mcp.WithString("type", mcp.Description("Contact type")),
			mcp.WithString("responsibility", mcp.Description("Responsibility label")),
			mcp.WithString("title", mcp.Description("Job title")),
			mcp.WithString("email", mcp.Description("Email address")),
			mcp.WithString("phone1", mcp.Description("Primary phone")),
			mcp.WithString("phone2", mcp.Description("Secondary phone")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectID, err := req.RequireString("project_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			organization, err := req.RequireString("organization")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			contact, err := steps.CreateContact(ctx, projectID, common.CreateContactRequest{
				Organization:   organization,
				Type:           req.GetString("type", ""),
				Responsibility: req.GetString("responsibility", ""),
				Name:           req.GetString("name", ""),
				Title:          req.GetString("title", ""),
				Email:          req.GetString("email", ""),
				Phone1:         req.GetString("phone1", ""),
				Phone2:         req.GetString("phone2", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(common.ContactPayloadFrom(contact))
			if err != nil {
				return nil, fmt.Errorf("encode create_contact result: %w", err)
			}
			return result, nil
		},
	)
}

// stepPayloads converts domain rows into wire payloads.
func stepPayloads(rows []domain.Activity) []common.StepPayload {
	payload := make([]common.StepPayload, 0, len(rows))
	for _, row := range rows {
		payload = append(payload, common.StepPayloadFrom(row))
	}
	return payload
}

// splitIDs parses a comma-separated id list, dropping empty entries.
func splitIDs(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
