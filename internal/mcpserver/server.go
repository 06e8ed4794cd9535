package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	appwallet "casino-wallet/internal/app/wallet"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type Server struct {
	wallet *appwallet.Service

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

func New(svc *appwallet.Service) *Server {
	mcpSrv := server.NewMCPServer(
		"casino-wallet",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithResourceRecovery(),
	)
	s := &Server{
		wallet:     svc,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerWalletTools()
	s.registerResources()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}

func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"player://{player_id}/balance",
			"player_balance",
			mcp.WithTemplateDescription("Current balance of a player"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			raw := string(request.Params.URI)
			if !strings.HasPrefix(raw, "player://") || !strings.HasSuffix(raw, "/balance") {
				return nil, nil
			}
			playerID := strings.TrimSuffix(strings.TrimPrefix(raw, "player://"), "/balance")
			if playerID == "" {
				return nil, nil
			}
			resp, err := s.wallet.Balance(ctx, playerID)
			if err != nil {
				return nil, err
			}
			payload, err := json.Marshal(resp)
			if err != nil {
				return nil, err
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      raw,
					MIMEType: "application/json",
					Text:     string(payload),
				},
			}, nil
		},
	)
}
