package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/reelist/internal/config"
	"github.com/kalambet/reelist/internal/library"
	"github.com/kalambet/reelist/internal/quiz"
	"github.com/kalambet/reelist/internal/recommend"
)

// --- quiz ---

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Run the taste questionnaire",
	Long: `Run the interactive taste questionnaire and save the answers as your
preference profile. Re-running the quiz replaces the previous profile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)
		var prefs library.Preferences

		steps := quiz.Steps()
		for i, step := range steps {
			fmt.Printf("\n%s\n", colorize(colorBold, fmt.Sprintf("[%d/%d] %s", i+1, len(steps), step.Title)))
			fmt.Println(step.Question)
			for j, opt := range step.Options {
				fmt.Printf("  %2d) %s\n", j+1, opt)
			}
			if step.Multiple {
				fmt.Print("Pick one or more (comma-separated numbers): ")
			} else {
				fmt.Print("Pick one (number): ")
			}

			for {
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("reading answer: %w", err)
				}
				answers, err := parseChoices(strings.TrimSpace(line), step.Options, step.Multiple)
				if err != nil {
					printWarning("%v", err)
					fmt.Print("Try again: ")
					continue
				}
				if err := quiz.Apply(&prefs, step, answers); err != nil {
					printWarning("%v", err)
					fmt.Print("Try again: ")
					continue
				}
				break
			}
		}

		if err := quiz.Validate(prefs); err != nil {
			return fmt.Errorf("incomplete answers: %w", err)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.put("/preferences", prefs)
		if err != nil {
			return err
		}
		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Preference profile saved")
		return nil
	},
}

// parseChoices resolves a comma-separated answer line against the step's
// options. Entries may be 1-based option numbers or option text.
func parseChoices(line string, options []string, multiple bool) ([]string, error) {
	if line == "" {
		return nil, fmt.Errorf("an answer is required")
	}
	parts := strings.Split(line, ",")
	if !multiple && len(parts) > 1 {
		return nil, fmt.Errorf("pick exactly one option")
	}

	var answers []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if n, err := strconv.Atoi(p); err == nil {
			if n < 1 || n > len(options) {
				return nil, fmt.Errorf("option %d out of range", n)
			}
			answers = append(answers, options[n-1])
			continue
		}
		answers = append(answers, p)
	}
	if len(answers) == 0 {
		return nil, fmt.Errorf("an answer is required")
	}
	return answers, nil
}

// --- recommend ---

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Generate movie recommendations",
	Long: `Generate movie recommendations from the saved preference profile and
watch history.

  reelist recommend
  reelist recommend --surprise`,
	RunE: func(cmd *cobra.Command, args []string) error {
		surprise, _ := cmd.Flags().GetBool("surprise")
		asJSON, _ := cmd.Flags().GetBool("json")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		printStep("Asking the model for recommendations...")
		resp, err := client.post("/recommendations", map[string]any{"surprise": surprise})
		if err != nil {
			return err
		}

		var result struct {
			Recommendations []recommend.Recommendation `json:"recommendations"`
			Surprise        bool                       `json:"surprise"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result.Recommendations)
		}

		for i, rec := range result.Recommendations {
			title := fmt.Sprintf("%d. %s (%d)", i+1, rec.Title, rec.Year)
			fmt.Printf("\n%s\n", colorize(colorBold, title))
			if len(rec.Genre) > 0 {
				fmt.Printf("   %s\n", strings.Join(rec.Genre, ", "))
			}
			if rec.IMDBRating != "" || rec.RottenTomatoes != "" {
				ratings := make([]string, 0, 2)
				if rec.IMDBRating != "" {
					ratings = append(ratings, "IMDb "+rec.IMDBRating)
				}
				if rec.RottenTomatoes != "" {
					ratings = append(ratings, "RT "+rec.RottenTomatoes)
				}
				fmt.Printf("   %s\n", strings.Join(ratings, " · "))
			}
			if rec.Description != "" {
				fmt.Printf("   %s\n", rec.Description)
			}
			if rec.Reasoning != "" {
				fmt.Printf("   %s\n", colorize(colorCyan, rec.Reasoning))
			}
		}
		fmt.Println()
		printSuccess("%d recommendations", len(result.Recommendations))
		return nil
	},
}

func init() {
	recommendCmd.Flags().Bool("surprise", false, "favor novelty over strict preference matching")
	recommendCmd.Flags().Bool("json", false, "print recommendations as JSON")
}

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage watch history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List watch-history entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get("/history?sort=date")
		if err != nil {
			return err
		}
		var entries []library.WatchedMovie
		if err := decodeJSON(resp, &entries); err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("Watch history is empty.")
			return nil
		}
		for _, e := range entries {
			rating := "unrated"
			if e.Rating > 0 {
				rating = fmt.Sprintf("%d/10", e.Rating)
			}
			fmt.Printf("%s (%d) — %s\n", colorize(colorBold, e.Title), e.Year, rating)
			fmt.Printf("  id: %s  watched: %s\n", e.ID, e.WatchedDate)
		}
		return nil
	},
}

var historyAddCmd = &cobra.Command{
	Use:   "add <title> <year>",
	Short: "Add a movie to the watch history",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		year, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("year must be a number: %q", args[1])
		}
		rating, _ := cmd.Flags().GetInt("rating")
		date, _ := cmd.Flags().GetString("date")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		body := library.WatchedMovie{
			Title:       args[0],
			Year:        year,
			Rating:      rating,
			WatchedDate: date,
		}
		resp, err := client.post("/history", body)
		if err != nil {
			return err
		}
		var saved library.WatchedMovie
		if err := decodeJSON(resp, &saved); err != nil {
			return err
		}

		printSuccess("Added %s (%d) — id %s", saved.Title, saved.Year, saved.ID)
		return nil
	},
}

var historyRateCmd = &cobra.Command{
	Use:   "rate <id> <rating>",
	Short: "Set the rating on a history entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rating, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("rating must be a number: %q", args[1])
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.patch("/history/"+args[0], map[string]any{"rating": rating})
		if err != nil {
			return err
		}
		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Rated entry %s: %d/10", args[0], rating)
		return nil
	},
}

var historyRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a history entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete("/history/" + args[0])
		if err != nil {
			return err
		}
		resp.Body.Close()

		printSuccess("Removed entry %s", args[0])
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the whole watch history",
	RunE: func(cmd *cobra.Command, args []string) error {
		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm {
			printWarning("This will delete the whole watch history. Use --confirm to proceed.")
			return nil
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete("/history")
		if err != nil {
			return err
		}
		resp.Body.Close()

		printSuccess("Watch history cleared")
		return nil
	},
}

func init() {
	historyAddCmd.Flags().Int("rating", 0, "your rating 1-10 (0 = unrated)")
	historyAddCmd.Flags().String("date", "", "watched date (RFC 3339, default now)")
	historyClearCmd.Flags().Bool("confirm", false, "confirm history deletion")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyAddCmd)
	historyCmd.AddCommand(historyRateCmd)
	historyCmd.AddCommand(historyRemoveCmd)
	historyCmd.AddCommand(historyClearCmd)
}

// --- prefs ---

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Manage the preference profile",
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the preference profile as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get("/preferences")
		if err != nil {
			return err
		}
		if resp.StatusCode == 404 {
			resp.Body.Close()
			fmt.Println("No preference profile saved. Run `reelist quiz` first.")
			return nil
		}
		var prefs library.Preferences
		if err := decodeJSON(resp, &prefs); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(prefs)
	},
}

var prefsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the preference profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete("/preferences")
		if err != nil {
			return err
		}
		resp.Body.Close()

		printSuccess("Preference profile cleared")
		return nil
	},
}

func init() {
	prefsCmd.AddCommand(prefsShowCmd)
	prefsCmd.AddCommand(prefsClearCmd)
}

// --- runs ---

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent recommendation runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(fmt.Sprintf("/runs?limit=%d", limit))
		if err != nil {
			return err
		}
		var runs []struct {
			ID        string `json:"id"`
			CreatedAt string `json:"createdAt"`
			Model     string `json:"model"`
			Status    string `json:"status"`
			Surprise  bool   `json:"surprise"`
			RecCount  int    `json:"recCount"`
			Error     string `json:"error,omitempty"`
		}
		if err := decodeJSON(resp, &runs); err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}
		for _, run := range runs {
			status := colorize(colorGreen, run.Status)
			if run.Status != "completed" {
				status = colorize(colorRed, run.Status)
			}
			fmt.Printf("%s  %s  %s  %d recs", run.CreatedAt, run.ID, status, run.RecCount)
			if run.Surprise {
				fmt.Print("  (surprise)")
			}
			fmt.Println()
			if run.Error != "" {
				fmt.Printf("  %s\n", colorize(colorRed, run.Error))
			}
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().Int("limit", 20, "maximum runs to list")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Read a single configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		val, err := config.GetKey(cfg, args[0])
		if err != nil {
			return fmt.Errorf("%w (valid keys: %s)", err, strings.Join(config.ValidKeys(), ", "))
		}
		fmt.Println(val)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}
