package cli

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"speechcraft/internal/domain"
	"speechcraft/internal/feed"
)

func newWatchCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow your transcription list live",
		Long:  "Opens the change feed and reprints the transcription list as jobs are inserted, updated, and deleted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := client.requireUser()
			if err != nil {
				return err
			}

			wsURL, err := feedURL(client.BaseURL, userID)
			if err != nil {
				return err
			}

			header := http.Header{}
			if client.Token != "" {
				header.Set("Authorization", "Bearer "+client.Token)
			}

			conn, resp, err := websocket.DefaultDialer.DialContext(cmd.Context(), wsURL, header)
			if err != nil {
				if resp != nil {
					return fmt.Errorf("dial feed: %w (HTTP %d)", err, resp.StatusCode)
				}
				return fmt.Errorf("dial feed: %w", err)
			}
			defer conn.Close() //nolint:errcheck

			// Close the socket when the command context ends so ReadJSON
			// unblocks on Ctrl-C.
			go func() {
				<-cmd.Context().Done()
				_ = conn.Close()
			}()

			state := feed.NewReconciler(nil)
			for {
				var ev domain.ChangeEvent
				if err := conn.ReadJSON(&ev); err != nil {
					if cmd.Context().Err() != nil {
						return nil
					}
					return fmt.Errorf("feed closed: %w", err)
				}
				state.Apply(ev)
				printWatchState(ev, state.Jobs())
			}
		},
	}
}

// feedURL converts the API base URL into the websocket feed endpoint.
func feedURL(base, userID string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", base, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid server URL %q: unsupported scheme", base)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/feed/" + url.PathEscape(userID)
	return u.String(), nil
}

func printWatchState(ev domain.ChangeEvent, jobs []domain.TranscriptionJob) {
	fmt.Printf("\n[%s] %s %s\n", ev.Timestamp.Local().Format("15:04:05"), ev.Type, ev.JobID)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILE\tSTATUS\tDURATION\tWORDS")
	for i := range jobs {
		job := &jobs[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			job.ID, job.FileName, job.StatusDisplay(), job.DurationDisplay(), job.WordCount())
	}
	_ = w.Flush()
}
