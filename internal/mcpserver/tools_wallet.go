package mcpserver

import (
	"context"
	"strings"

	appwallet "casino-wallet/internal/app/wallet"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerWalletTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"open_account",
			mcp.WithDescription("Create a player account funded with the starting balance"),
		),
		s.handleOpenAccount,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_balance",
			mcp.WithDescription("Get a player's current balance"),
			mcp.WithString("player_id", mcp.Required(), mcp.Description("Player id")),
		),
		s.handleGetBalance,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_transactions",
			mcp.WithDescription("List a player's transactions, oldest first"),
			mcp.WithString("player_id", mcp.Required(), mcp.Description("Player id")),
			mcp.WithNumber("limit", mcp.Description("Page size, default 50, max 500")),
			mcp.WithNumber("offset", mcp.Description("Page offset, default 0")),
		),
		s.handleListTransactions,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"place_bet",
			mcp.WithDescription("Debit a bet and start a game session"),
			mcp.WithString("player_id", mcp.Required(), mcp.Description("Player id")),
			mcp.WithString("game_id", mcp.Required(), mcp.Description("Game id at the provider")),
			mcp.WithString("bet", mcp.Required(), mcp.Description("Stake in currency units, e.g. \"2.50\"")),
			mcp.WithString("ref", mcp.Description("Idempotency reference; reusing a settled ref is rejected")),
		),
		s.handlePlaceBet,
	)
}

func (s *Server) handleOpenAccount(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := s.wallet.OpenAccount(ctx)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleGetBalance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	playerID := strings.TrimSpace(request.GetString("player_id", ""))
	if playerID == "" {
		return toolError("invalid_request", "player_id is required"), nil
	}
	resp, err := s.wallet.Balance(ctx, playerID)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleListTransactions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	playerID := strings.TrimSpace(request.GetString("player_id", ""))
	if playerID == "" {
		return toolError("invalid_request", "player_id is required"), nil
	}
	limit, offset := clampPagination(request.GetInt("limit", defaultPageLimit), request.GetInt("offset", 0), maxPageLimit)
	resp, err := s.wallet.Transactions(ctx, playerID, limit, offset)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handlePlaceBet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bet, err := decimalArg(request.GetArguments(), "bet")
	if err != nil {
		return toolError("invalid_amount", err.Error()), nil
	}
	resp, err := s.wallet.PlaceBet(ctx, appwallet.PlaceBetInput{
		PlayerID: strings.TrimSpace(request.GetString("player_id", "")),
		GameID:   strings.TrimSpace(request.GetString("game_id", "")),
		Bet:      bet,
		Ref:      request.GetString("ref", ""),
	})
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}
