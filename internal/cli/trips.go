package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pkordes/trip-planner/internal/domain"
)

var (
	tripsPage  int
	tripsLimit int
)

var tripsCmd = &cobra.Command{
	Use:   "trips",
	Short: "Work with trips",
}

var tripsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the traveler's trips",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		params := domain.NewPaginationParams(&tripsPage, &tripsLimit)
		trips, total, err := a.trips.List(cmd.Context(), sess, params)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(trips) == 0 {
			fmt.Fprintln(out, "No trips found")
			return nil
		}
		printTable(out, []string{"ID", "NAME", "DESTINATION", "DATES", "DAYS"}, tripRows(trips))
		fmt.Fprintf(out, "\npage %d, %d of %d trips\n", params.Page, len(trips), total)
		return nil
	},
}

func tripRows(trips []domain.Trip) [][]string {
	rows := make([][]string, len(trips))
	for i, t := range trips {
		rows[i] = []string{
			t.ID.String(),
			t.Name,
			t.Destination,
			t.StartDate.Format(domain.DateLayout) + " – " + t.EndDate.Format(domain.DateLayout),
			strconv.Itoa(len(t.Days)),
		}
	}
	return rows
}

func init() {
	tripsListCmd.Flags().IntVar(&tripsPage, "page", 1, "page number")
	tripsListCmd.Flags().IntVar(&tripsLimit, "limit", domain.DefaultPageLimit, "trips per page")
	tripsCmd.AddCommand(tripsListCmd)
}
