package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/reelist/internal/library"
	"github.com/kalambet/reelist/internal/quiz"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Repo        *library.Repository
	Recommender RecommendRunner
}

// NewMCPServer creates an MCP server exposing the recommendation pipeline
// and the library store as tools and resources.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"reelist",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("reelist — personal movie recommendations from your taste profile and watch history."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("recommend_movies",
			mcp.WithDescription("Generate 8-10 movie recommendations from the saved taste profile and watch history."),
			mcp.WithBoolean("surprise", mcp.Description("Favor novelty over strict preference matching")),
		),
		mcpRecommend(deps),
	)

	s.AddTool(
		mcp.NewTool("add_to_history",
			mcp.WithDescription("Add a watched movie to the history."),
			mcp.WithString("title", mcp.Description("Movie title"), mcp.Required()),
			mcp.WithNumber("year", mcp.Description("Release year"), mcp.Required()),
			mcp.WithNumber("rating", mcp.Description("Your rating 1-10 (omit for unrated)")),
			mcp.WithString("poster", mcp.Description("Optional poster URL")),
		),
		mcpAddToHistory(deps),
	)

	s.AddTool(
		mcp.NewTool("rate_movie",
			mcp.WithDescription("Set the rating on an existing watch-history entry."),
			mcp.WithString("id", mcp.Description("History entry ID"), mcp.Required()),
			mcp.WithNumber("rating", mcp.Description("Rating 1-10"), mcp.Required()),
		),
		mcpRateMovie(deps),
	)

	s.AddTool(
		mcp.NewTool("remove_from_history",
			mcp.WithDescription("Remove a watch-history entry. Removing an unknown ID is a no-op."),
			mcp.WithString("id", mcp.Description("History entry ID"), mcp.Required()),
		),
		mcpRemoveFromHistory(deps),
	)

	s.AddTool(
		mcp.NewTool("list_history",
			mcp.WithDescription("List the watch history, most recently watched first."),
		),
		mcpListHistory(deps),
	)

	s.AddTool(
		mcp.NewTool("clear_history",
			mcp.WithDescription("Delete the whole watch history."),
		),
		mcpClearHistory(deps),
	)

	s.AddTool(
		mcp.NewTool("set_preferences",
			mcp.WithDescription("Replace the taste profile. Values must come from the questionnaire option sets."),
			mcp.WithArray("genres", mcp.Description("Favorite genres"), mcp.Required()),
			mcp.WithString("era", mcp.Description("Preferred era"), mcp.Required()),
			mcp.WithArray("mood", mcp.Description("Mood/tone picks"), mcp.Required()),
			mcp.WithString("content_level", mcp.Description("Content tolerance"), mcp.Required()),
			mcp.WithString("watch_time", mcp.Description("Preferred movie length"), mcp.Required()),
			mcp.WithString("rating_preference", mcp.Description("Quality threshold"), mcp.Required()),
			mcp.WithString("score_preference", mcp.Description("Critic/audience trust"), mcp.Required()),
		),
		mcpSetPreferences(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"movies://preferences",
			"Taste Profile",
			mcp.WithResourceDescription("Current preference profile as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourcePreferences(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"movies://history",
			"Watch History",
			mcp.WithResourceDescription("Full watch history as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceHistory(deps),
	)

	return s
}

func mcpRecommend(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		surprise := req.GetBool("surprise", false)

		recs, err := deps.Recommender.Run(ctx, surprise)
		if err != nil {
			return mcpError(fmt.Sprintf("recommendation run failed: %v", err)), nil
		}

		b, err := json.Marshal(recs)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal recommendations: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpAddToHistory(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, err := req.RequireString("title")
		if err != nil {
			return mcpError("title is required"), nil
		}
		year, err := req.RequireInt("year")
		if err != nil {
			return mcpError("year is required"), nil
		}

		m := library.WatchedMovie{
			Title:  title,
			Year:   year,
			Rating: req.GetInt("rating", 0),
			Poster: req.GetString("poster", ""),
		}
		saved, err := deps.Repo.AddWatchEntry(m)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to add entry: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Added %s (%d) to history as %s", saved.Title, saved.Year, saved.ID)), nil
	}
}

func mcpRateMovie(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcpError("id is required"), nil
		}
		rating, err := req.RequireInt("rating")
		if err != nil {
			return mcpError("rating is required"), nil
		}

		if err := deps.Repo.UpdateWatchEntry(id, library.EntryUpdate{Rating: &rating}); err != nil {
			return mcpError(fmt.Sprintf("failed to rate entry: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Rated %s %d/10", id, rating)), nil
	}
}

func mcpRemoveFromHistory(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcpError("id is required"), nil
		}
		if err := deps.Repo.RemoveWatchEntry(id); err != nil {
			return mcpError(fmt.Sprintf("failed to remove entry: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Removed %s from history", id)), nil
	}
}

func mcpListHistory(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		history := library.SortedByWatchedDate(deps.Repo.GetWatchHistory())

		b, err := json.Marshal(history)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal history: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpClearHistory(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := deps.Repo.ClearWatchHistory(); err != nil {
			return mcpError(fmt.Sprintf("failed to clear history: %v", err)), nil
		}
		return mcpText("Watch history cleared"), nil
	}
}

func mcpSetPreferences(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		prefs := library.Preferences{
			Genres:           req.GetStringSlice("genres", nil),
			Era:              req.GetString("era", ""),
			Mood:             req.GetStringSlice("mood", nil),
			ContentLevel:     req.GetString("content_level", ""),
			WatchTime:        req.GetString("watch_time", ""),
			RatingPreference: req.GetString("rating_preference", ""),
			ScorePreference:  req.GetString("score_preference", ""),
		}

		if err := quiz.Validate(prefs); err != nil {
			return mcpError(fmt.Sprintf("invalid preferences: %v", err)), nil
		}
		if err := deps.Repo.SetPreferences(prefs); err != nil {
			return mcpError(fmt.Sprintf("failed to save preferences: %v", err)), nil
		}
		return mcpText("Preferences saved"), nil
	}
}

func mcpResourcePreferences(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		prefs, _ := deps.Repo.GetPreferences()

		b, err := json.Marshal(prefs)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal preferences: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpResourceHistory(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		history := deps.Repo.GetWatchHistory()

		b, err := json.Marshal(history)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal history: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
