package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/pushpam22priya/contract-management-sub000/internal/services"
	"github.com/pushpam22priya/contract-management-sub000/pkg/models"
)

// Server exposes the contract workflow over the MCP protocol so agent
// tooling can drive the same lifecycle operations as the REST API.
type Server struct {
	mcpServer *server.MCPServer
	engine    *services.ContractService
}

func NewServer(engine *services.ContractService) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"Contract Management",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
		engine: engine,
	}

	s.registerTools()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"create_contract",
			mcp.WithDescription("Create a new draft contract"),
			mcp.WithString("title", mcp.Required(), mcp.Description("Contract title")),
			mcp.WithString("client_name", mcp.Description("Client the contract is with")),
			mcp.WithString("created_by", mcp.Required(), mcp.Description("Email of the contract owner")),
		),
		s.handleCreateContract,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_contract",
			mcp.WithDescription("Fetch a contract by id, including its date-derived display status"),
			mcp.WithString("id", mcp.Required(), mcp.Description("The contract ID")),
		),
		s.handleGetContract,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"review_queue",
			mcp.WithDescription("List contracts awaiting review or approval by the given participant"),
			mcp.WithString("identity", mcp.Required(), mcp.Description("Email of the reviewer or approver")),
		),
		s.handleReviewQueue,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"mark_reviewed",
			mcp.WithDescription("Record that a reviewer has completed their review of a contract"),
			mcp.WithString("id", mcp.Required(), mcp.Description("The contract ID")),
			mcp.WithString("reviewer", mcp.Required(), mcp.Description("Email of the reviewer")),
		),
		s.handleMarkReviewed,
	)
}

func (s *Server) handleCreateContract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	title, ok := args["title"].(string)
	if !ok || title == "" {
		return mcp.NewToolResultError("Missing required parameter: title"), nil
	}
	createdBy, ok := args["created_by"].(string)
	if !ok || createdBy == "" {
		return mcp.NewToolResultError("Missing required parameter: created_by"), nil
	}
	clientName, _ := args["client_name"].(string)

	res := s.engine.CreateContract(ctx, services.CreateContractInput{
		Title:      title,
		ClientName: clientName,
		CreatedBy:  createdBy,
	})
	if !res.Success {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create contract: %s", res.Message)), nil
	}

	jsonBytes, _ := json.Marshal(res.Contract)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGetContract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	id, ok := args["id"].(string)
	if !ok || id == "" {
		return mcp.NewToolResultError("Missing required parameter: id"), nil
	}

	contract, err := s.engine.GetContractByID(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get contract: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(models.NewContractView(*contract, time.Now()))
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleReviewQueue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	identity, ok := args["identity"].(string)
	if !ok || identity == "" {
		return mcp.NewToolResultError("Missing required parameter: identity"), nil
	}

	contracts, err := s.engine.GetContractsForReview(ctx, identity)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list review queue: %v", err)), nil
	}

	now := time.Now()
	views := make([]models.ContractView, 0, len(contracts))
	for _, contract := range contracts {
		views = append(views, models.NewContractView(contract, now))
	}
	jsonBytes, _ := json.Marshal(views)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleMarkReviewed(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	id, ok := args["id"].(string)
	if !ok || id == "" {
		return mcp.NewToolResultError("Missing required parameter: id"), nil
	}
	reviewer, ok := args["reviewer"].(string)
	if !ok || reviewer == "" {
		return mcp.NewToolResultError("Missing required parameter: reviewer"), nil
	}

	res := s.engine.MarkAsReviewed(ctx, id, reviewer)
	if !res.Success {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to mark reviewed: %s", res.Message)), nil
	}

	return mcp.NewToolResultText(res.Message), nil
}

// MountHTTPHandlers wires the MCP server onto a ServeMux: direct POST on
// /mcp plus the SSE transport endpoints.
func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
