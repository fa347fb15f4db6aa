// Team commands: create, list, get, update, delete, undelete.
package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strata/internal/roster"
	"github.com/mesh-intelligence/strata/pkg/types"
)

var (
	teamListSearch string
	teamListSort   string
	teamListLimit  int
	teamListOffset int
	teamListAll    bool
)

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Manage teams",
}

var teamCreateCmd = &cobra.Command{
	Use:   "create key=value ...",
	Short: "Create a team",
	Long: `Create a team from key=value pairs.

Example:
  strata team create name="Alpha Team" description="first responders"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTeamCreate,
}

var teamListCmd = &cobra.Command{
	Use:   "list [key=value ...]",
	Short: "List teams",
	Long: `List teams matching the given key=value filters.

Example:
  strata team list
  strata team list is_active=true --sort created_at:desc --limit 10
  strata team list --search "alpha"`,
	RunE: runTeamList,
}

var teamGetCmd = &cobra.Command{
	Use:   "get <id-or-name>",
	Short: "Show one team",
	Args:  cobra.ExactArgs(1),
	RunE:  runTeamGet,
}

var teamUpdateCmd = &cobra.Command{
	Use:   "update <id> key=value ...",
	Short: "Update a team",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runTeamUpdate,
}

var teamDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Soft-delete a team",
	Long:  `Delete marks the team inactive. The row is kept and can be restored with undelete.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTeamDelete,
}

var teamUndeleteCmd = &cobra.Command{
	Use:   "undelete <id>",
	Short: "Restore a soft-deleted team",
	Args:  cobra.ExactArgs(1),
	RunE:  runTeamUndelete,
}

func init() {
	teamListCmd.Flags().StringVar(&teamListSearch, "search", "", "free-text search over name and description")
	teamListCmd.Flags().StringVar(&teamListSort, "sort", "", "sort spec, e.g. created_at:desc,name")
	teamListCmd.Flags().IntVar(&teamListLimit, "limit", 20, "page size")
	teamListCmd.Flags().IntVar(&teamListOffset, "offset", 0, "page offset")
	teamListCmd.Flags().BoolVar(&teamListAll, "all", false, "return every match, unpaginated")

	teamCmd.AddCommand(teamCreateCmd)
	teamCmd.AddCommand(teamListCmd)
	teamCmd.AddCommand(teamGetCmd)
	teamCmd.AddCommand(teamUpdateCmd)
	teamCmd.AddCommand(teamDeleteCmd)
	teamCmd.AddCommand(teamUndeleteCmd)
}

func runTeamCreate(cmd *cobra.Command, args []string) error {
	data, err := parseFields(args)
	if err != nil {
		return err
	}
	team, err := app.Teams.Create(cmd.Context(), db, data)
	if err != nil {
		return fmt.Errorf("create team: %w", err)
	}
	if jsonOutput {
		return printJSON(team)
	}
	fmt.Printf("Created team %s (%s)\n", team.Name, shortID(team.ID))
	return nil
}

func runTeamList(cmd *cobra.Command, args []string) error {
	filters, err := parseFields(args)
	if err != nil {
		return err
	}
	q, err := buildQuery(filters, teamListSearch, teamListSort)
	if err != nil {
		return err
	}

	var teams []*roster.Team
	total := 0
	if teamListAll {
		teams, err = app.Teams.Filter(cmd.Context(), db, q)
		total = len(teams)
	} else {
		page := types.Pagination{Limit: teamListLimit, Offset: teamListOffset}
		teams, total, err = app.Teams.FilterPage(cmd.Context(), db, q, page)
	}
	if err != nil {
		return fmt.Errorf("list teams: %w", err)
	}

	if jsonOutput {
		return printJSON(map[string]any{"items": teams, "total": total})
	}
	printTeamTable(teams, total)
	return nil
}

func runTeamGet(cmd *cobra.Command, args []string) error {
	team, err := app.Teams.GetByID(cmd.Context(), db, args[0])
	if err != nil {
		return fmt.Errorf("get team: %w", err)
	}
	if team == nil {
		team, err = app.Teams.GetByName(cmd.Context(), db, args[0])
		if err != nil {
			return fmt.Errorf("get team: %w", err)
		}
	}
	if team == nil {
		return fmt.Errorf("no team matches %q", args[0])
	}
	return printJSON(team)
}

func runTeamUpdate(cmd *cobra.Command, args []string) error {
	team, err := requireTeam(cmd, args[0])
	if err != nil {
		return err
	}
	data, err := parseFields(args[1:])
	if err != nil {
		return err
	}
	if err := app.Teams.Update(cmd.Context(), db, team, data); err != nil {
		return fmt.Errorf("update team: %w", err)
	}
	if jsonOutput {
		return printJSON(team)
	}
	fmt.Printf("Updated team %s\n", shortID(team.ID))
	return nil
}

func runTeamDelete(cmd *cobra.Command, args []string) error {
	team, err := requireTeam(cmd, args[0])
	if err != nil {
		return err
	}
	if err := app.Teams.Delete(cmd.Context(), db, team); err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	fmt.Printf("Deleted team %s (restore with: strata team undelete %s)\n", team.Name, team.ID)
	return nil
}

func runTeamUndelete(cmd *cobra.Command, args []string) error {
	team, err := requireTeam(cmd, args[0])
	if err != nil {
		return err
	}
	if err := app.Teams.Undelete(cmd.Context(), db, team); err != nil {
		return fmt.Errorf("undelete team: %w", err)
	}
	fmt.Printf("Restored team %s\n", team.Name)
	return nil
}

func requireTeam(cmd *cobra.Command, id string) (*roster.Team, error) {
	team, err := app.Teams.GetByID(cmd.Context(), db, id)
	if err != nil {
		return nil, fmt.Errorf("get team: %w", err)
	}
	if team == nil {
		return nil, fmt.Errorf("no team with id %q", id)
	}
	return team, nil
}

func printTeamTable(teams []*roster.Team, total int) {
	if len(teams) == 0 {
		fmt.Println("No teams found.")
		return
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tACTIVE\tCREATED")
	for _, t := range teams {
		created := ""
		if !t.CreatedAt.IsZero() {
			created = t.CreatedAt.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%v\t%s\n",
			shortID(t.ID), truncate(t.Name, 40), t.IsActive, created)
	}
	w.Flush()
	fmt.Print(sb.String())
	fmt.Printf("Total: %d team(s)\n", total)
}
