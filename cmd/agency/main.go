package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	cl "github.com/chrisf-bit/agency-simulator-sub000/internal/cli"
	"github.com/chrisf-bit/agency-simulator-sub000/internal/config"
	"github.com/chrisf-bit/agency-simulator-sub000/internal/syncq"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "agency",
		Short:        "Agency simulator game client",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", apiBase, "API base URL")

	root.AddCommand(
		newCreateCmd(&apiBase),
		newJoinCmd(&apiBase),
		newLeaveCmd(),
		newStatusCmd(&apiBase),
		newOpportunitiesCmd(&apiBase),
		newSubmitCmd(&apiBase),
		newSyncCmd(&apiBase),
		newTeamCmd(&apiBase),
		newResultsCmd(&apiBase),
		newNotificationsCmd(&apiBase),
		newInsightsCmd(&apiBase),
		newLeaderboardCmd(&apiBase),
		newEventsCmd(&apiBase),
		newAdvanceCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}

func teamSession() (cl.Session, error) {
	sess, err := cl.LoadSession()
	if err != nil {
		return cl.Session{}, fmt.Errorf("join a game first: %w", err)
	}
	if !sess.IsTeam() {
		return cl.Session{}, fmt.Errorf("this session is a facilitator session; team commands need `agency join`")
	}
	return sess, nil
}

func facilitatorSession() (cl.Session, error) {
	sess, err := cl.LoadSession()
	if err != nil {
		return cl.Session{}, fmt.Errorf("create a game first: %w", err)
	}
	if !sess.IsFacilitator() {
		return cl.Session{}, fmt.Errorf("this session is a team session; facilitator commands need `agency create`")
	}
	return sess, nil
}

func newCreateCmd(apiBase *string) *cobra.Command {
	var level string
	var teams, quarters int
	var seed int64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a game as facilitator",
		RunE: func(cmd *cobra.Command, args []string) error {
			if level == "" {
				choice, err := promptChoice("Level", []string{"startup", "growth", "enterprise"}, "startup")
				if err != nil {
					return err
				}
				level = choice
			}
			if teams == 0 {
				n, err := promptIntDefault("Number of teams", 1, 4)
				if err != nil {
					return err
				}
				teams = int(n)
			}

			body := map[string]any{
				"level":           level,
				"number_of_teams": teams,
			}
			if quarters > 0 {
				body["max_quarters"] = quarters
			}
			if seed != 0 {
				body["seed"] = seed
			}

			ctx, cancel := requestContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).CreateGame(ctx, body)
			if err != nil {
				return err
			}
			created, err := decodeInto[createPayload](out)
			if err != nil {
				return err
			}
			if err := cl.SaveSession(cl.Session{
				APIBaseURL:     *apiBase,
				GameID:         created.Game.ID,
				JoinCode:       created.JoinCode,
				FacilitatorKey: created.FacilitatorKey,
			}); err != nil {
				return err
			}
			printSuccess("Game created. Facilitator session saved.")
			fmt.Printf("Join code:        %s\n", created.JoinCode)
			fmt.Printf("Facilitator key:  %s\n", created.FacilitatorKey)
			printInfo("Share the join code with the teams. Keep the key to yourself.")
			return nil
		},
	}
	cmd.Flags().StringVar(&level, "level", "", "difficulty level (startup, growth, enterprise)")
	cmd.Flags().IntVar(&teams, "teams", 0, "number of teams")
	cmd.Flags().IntVar(&quarters, "quarters", 0, "override the level's quarter count")
	cmd.Flags().Int64Var(&seed, "seed", 0, "deterministic seed (0 picks one)")
	return cmd
}

func newJoinCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "join [code]",
		Short: "Join a game as a team",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var code string
			if len(args) > 0 {
				code = strings.ToUpper(strings.TrimSpace(args[0]))
			} else {
				var err error
				code, err = promptRequired("Join code")
				if err != nil {
					return err
				}
			}
			name, err := promptRequired("Company name")
			if err != nil {
				return err
			}

			ctx, cancel := requestContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).JoinGame(ctx, code, name)
			if err != nil {
				return err
			}
			joined, err := decodeInto[joinPayload](out)
			if err != nil {
				return err
			}
			if err := cl.SaveSession(cl.Session{
				APIBaseURL:  *apiBase,
				GameID:      joined.Game.ID,
				TeamID:      joined.TeamID,
				Token:       joined.Token,
				CompanyName: name,
			}); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Joined as %s. Session saved.", name))
			if gameRaw, ok := out["game"].(map[string]any); ok {
				return renderGame(gameRaw)
			}
			return nil
		},
	}
}

func newLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave",
		Short: "Clear the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cl.ClearSession(); err != nil {
				return err
			}
			printSuccess("Session cleared.")
			return nil
		},
	}
}

func newStatusCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the game state",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("join a game first: %w", err)
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).Game(ctx, sess.GameID)
			if err != nil {
				return err
			}
			return renderGame(out)
		},
	}
}

func newOpportunitiesCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:     "opportunities",
		Short:   "List this quarter's client opportunities",
		Aliases: []string{"opps"},
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := teamSession()
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).Opportunities(ctx, sess.GameID, sess.Token)
			if err != nil {
				return err
			}
			return renderOpportunities(out)
		},
	}
}

func newSubmitCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "submit",
		Short: "Submit this quarter's decisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := teamSession()
			if err != nil {
				return err
			}
			client := newClient(apiBase)
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			// Show the pool first so pitch IDs can be copied. Working
			// offline, skip straight to the staffing prompts.
			if opps, err := client.Opportunities(ctx, sess.GameID, sess.Token); err == nil {
				if err := renderOpportunities(opps); err != nil {
					return err
				}
			} else {
				printWarn("Could not fetch opportunities: " + err.Error())
			}

			inputs, err := promptQuarterInputs()
			if err != nil {
				return err
			}

			reqCtx, reqCancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer reqCancel()
			out, err := client.SubmitInputs(reqCtx, sess.GameID, sess.Token, inputs)
			if err != nil {
				return queueOnNetworkError(err, syncq.Command{
					Method:   "POST",
					Path:     "/v1/games/" + sess.GameID + "/inputs",
					Body:     inputs,
					QueuedAt: time.Now().UTC(),
				})
			}
			printSuccess("Decisions submitted.")
			return renderGame(out)
		},
	}
}

func promptQuarterInputs() (map[string]any, error) {
	hiring, err := promptIntDefault("Hire staff", 0, 0)
	if err != nil {
		return nil, err
	}
	firing, err := promptIntDefault("Let staff go", 0, 0)
	if err != nil {
		return nil, err
	}
	tech, err := promptDollars("Tech investment")
	if err != nil {
		return nil, err
	}
	training, err := promptDollars("Training investment")
	if err != nil {
		return nil, err
	}
	marketing, err := promptDollars("Marketing spend")
	if err != nil {
		return nil, err
	}
	wellbeing, err := promptDollars("Wellbeing spend")
	if err != nil {
		return nil, err
	}
	clientSat, err := promptDollars("Client care spend")
	if err != nil {
		return nil, err
	}
	growth, err := promptFraction("Growth focus", 0.5)
	if err != nil {
		return nil, err
	}

	pitches := []map[string]any{}
	printInfo("Add pitches. Leave the ID blank to finish.")
	for {
		id, err := promptOptional("Opportunity ID")
		if err != nil {
			return nil, err
		}
		if id == "" {
			break
		}
		discount, err := promptIntDefault("Discount %", 0, 0)
		if err != nil {
			return nil, err
		}
		quality, err := promptChoice("Quality", []string{"budget", "standard", "premium"}, "standard")
		if err != nil {
			return nil, err
		}
		pitches = append(pitches, map[string]any{
			"opportunity_id": id,
			"discount_pct":   discount,
			"quality":        quality,
		})
	}

	return map[string]any{
		"pitches":                pitches,
		"hiring_count":           hiring,
		"firing_count":           firing,
		"tech_spend_cents":       tech,
		"training_spend_cents":   training,
		"marketing_spend_cents":  marketing,
		"wellbeing_spend_cents":  wellbeing,
		"client_sat_spend_cents": clientSat,
		"growth_focus":           growth,
	}, nil
}

func newSyncCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay queued offline submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := teamSession()
			if err != nil {
				return err
			}
			queue, err := syncq.Load()
			if err != nil {
				return err
			}
			if len(queue) == 0 {
				printInfo("Sync queue is empty.")
				return nil
			}
			client := newClient(apiBase)
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			remaining := make([]syncq.Command, 0, len(queue))
			replayed := 0
			for _, q := range queue {
				_, err := client.Do(ctx, q.Method, q.Path, sess.Token, q.Body)
				switch {
				case err == nil:
					replayed++
				case strings.Contains(err.Error(), "api status 409"):
					// Already applied or the quarter moved on. Either
					// way the command is spent.
					printWarn(fmt.Sprintf("Dropped stale command for %s: %v", q.Path, err))
				default:
					remaining = append(remaining, q)
					printError(fmt.Sprintf("Sync failed for %s %s: %v", q.Method, q.Path, err))
				}
			}
			if err := syncq.Save(remaining); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Sync complete: replayed=%d remaining=%d", replayed, len(remaining)))
			return nil
		},
	}
}

func newTeamCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "team",
		Short: "Show your agency's state",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := teamSession()
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).TeamState(ctx, sess.GameID, sess.Token)
			if err != nil {
				return err
			}
			return renderTeamState(out)
		},
	}
}

func newResultsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "results",
		Short: "Show your quarterly results",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := teamSession()
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).TeamResults(ctx, sess.GameID, sess.Token)
			if err != nil {
				return err
			}
			return renderResults(out)
		},
	}
}

func newNotificationsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:     "notifications",
		Short:   "Show last quarter's notifications",
		Aliases: []string{"notes"},
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := teamSession()
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).TeamNotifications(ctx, sess.GameID, sess.Token)
			if err != nil {
				return err
			}
			return renderNotifications(out)
		},
	}
}

func newInsightsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Show advisor insights for your agency",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := teamSession()
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).TeamInsights(ctx, sess.GameID, sess.Token)
			if err != nil {
				return err
			}
			return renderInsights(out)
		},
	}
}

func newLeaderboardCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:     "leaderboard",
		Short:   "Show the standings",
		Aliases: []string{"lb"},
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("join a game first: %w", err)
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).Leaderboard(ctx, sess.GameID)
			if err != nil {
				return err
			}
			return renderLeaderboard(out)
		},
	}
}

func newEventsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Show this quarter's market events",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("join a game first: %w", err)
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).Events(ctx, sess.GameID)
			if err != nil {
				return err
			}
			return renderEvents(out)
		},
	}
}

func newAdvanceCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "advance",
		Short: "Force-close the quarter (facilitator)",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := facilitatorSession()
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).AdvanceQuarter(ctx, sess.GameID, sess.FacilitatorKey)
			if err != nil {
				return err
			}
			printSuccess("Quarter closed.")
			return renderGame(out)
		},
	}
}

// queueOnNetworkError saves a write for later replay when the API is
// unreachable. Structured API rejections are real answers and surface
// as-is.
func queueOnNetworkError(err error, cmd syncq.Command) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "api status") {
		return err
	}
	if pushErr := syncq.Push(cmd); pushErr != nil {
		return fmt.Errorf("request failed and could not be queued: %v (queue: %v)", err, pushErr)
	}
	printWarn("API unreachable. Decision queued locally; run `agency sync` when back online.")
	return nil
}
