package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

type submitResult struct {
	TranscriptionID string `json:"transcriptionId"`
	Status          string `json:"status"`
	FileName        string `json:"fileName"`
	AudioURL        string `json:"audioUrl"`
	EstimatedTime   string `json:"estimatedTime"`
}

func newSubmitCmd(client *Client) *cobra.Command {
	var fileName string

	cmd := &cobra.Command{
		Use:   "submit <audio-url>",
		Short: "Start a transcription for an audio URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := client.requireUser()
			if err != nil {
				return err
			}

			body := map[string]string{
				"userId":   userID,
				"audioUrl": args[0],
			}
			if fileName != "" {
				body["fileName"] = fileName
			}

			data, msg, err := client.do(cmd.Context(), http.MethodPost, "/api/transcribe", nil, body)
			if err != nil {
				return err
			}
			if outputFormat(cmd) == "json" {
				return printJSON(data)
			}

			var res submitResult
			if err := json.Unmarshal(data, &res); err != nil {
				return err
			}
			fmt.Printf("%s\n", msg)
			fmt.Printf("  id:        %s\n", res.TranscriptionID)
			fmt.Printf("  file:      %s\n", res.FileName)
			fmt.Printf("  status:    %s\n", res.Status)
			fmt.Printf("  estimated: %s\n", res.EstimatedTime)
			return nil
		},
	}

	cmd.Flags().StringVarP(&fileName, "file-name", "f", "", "Display name for the audio file")
	return cmd
}

type statusResult struct {
	ID            string  `json:"id"`
	Status        string  `json:"status"`
	FileName      string  `json:"fileName"`
	Text          *string `json:"text,omitempty"`
	WordCount     int     `json:"wordCount"`
	Duration      string  `json:"duration"`
	ConfidenceFmt string  `json:"confidenceFormatted"`
	ErrorMessage  *string `json:"errorMessage,omitempty"`
}

func newStatusCmd(client *Client) *cobra.Command {
	var showText bool

	cmd := &cobra.Command{
		Use:   "status <transcription-id>",
		Short: "Show one transcription's status and result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, msg, err := client.do(cmd.Context(), http.MethodGet,
				"/api/"+url.PathEscape(args[0])+"/status", client.userQuery(), nil)
			if err != nil {
				return err
			}
			if outputFormat(cmd) == "json" {
				return printJSON(data)
			}

			var res statusResult
			if err := json.Unmarshal(data, &res); err != nil {
				return err
			}
			fmt.Printf("%s\n", msg)
			fmt.Printf("  id:         %s\n", res.ID)
			fmt.Printf("  file:       %s\n", res.FileName)
			fmt.Printf("  status:     %s\n", res.Status)
			fmt.Printf("  duration:   %s\n", res.Duration)
			fmt.Printf("  confidence: %s\n", res.ConfidenceFmt)
			fmt.Printf("  words:      %d\n", res.WordCount)
			if res.ErrorMessage != nil {
				fmt.Printf("  error:      %s\n", *res.ErrorMessage)
			}
			if showText && res.Text != nil {
				fmt.Printf("\n%s\n", *res.Text)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showText, "text", false, "Print the full transcript text")
	return cmd
}

type historyItem struct {
	ID            string    `json:"id"`
	FileName      string    `json:"fileName"`
	StatusDisplay string    `json:"statusDisplay"`
	Duration      string    `json:"duration"`
	WordCount     int       `json:"wordCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

type historyResult struct {
	Transcriptions []historyItem `json:"transcriptions"`
	Pagination     struct {
		CurrentPage int   `json:"currentPage"`
		TotalPages  int   `json:"totalPages"`
		TotalItems  int64 `json:"totalItems"`
	} `json:"pagination"`
}

func newHistoryCmd(client *Client) *cobra.Command {
	var (
		status string
		search string
		page   int
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List your transcriptions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := client.requireUser()
			if err != nil {
				return err
			}

			q := url.Values{}
			if status != "" {
				q.Set("status", status)
			}
			if search != "" {
				q.Set("search", search)
			}
			if page > 0 {
				q.Set("page", strconv.Itoa(page))
			}
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}

			data, _, err := client.do(cmd.Context(), http.MethodGet,
				"/api/history/"+url.PathEscape(userID), q, nil)
			if err != nil {
				return err
			}
			if outputFormat(cmd) == "json" {
				return printJSON(data)
			}

			var res historyResult
			if err := json.Unmarshal(data, &res); err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tFILE\tSTATUS\tDURATION\tWORDS\tCREATED")
			for _, item := range res.Transcriptions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					item.ID, item.FileName, item.StatusDisplay,
					item.Duration, item.WordCount,
					item.CreatedAt.Local().Format("2006-01-02 15:04"))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("\npage %d of %d (%d total)\n",
				res.Pagination.CurrentPage, res.Pagination.TotalPages, res.Pagination.TotalItems)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (processing, completed, error)")
	cmd.Flags().StringVar(&search, "search", "", "Search file names and transcript text")
	cmd.Flags().IntVar(&page, "page", 0, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size")
	return cmd
}

type statsResult struct {
	Total                  int64  `json:"totalTranscriptions"`
	Completed              int64  `json:"completedCount"`
	Processing             int64  `json:"processingCount"`
	Failed                 int64  `json:"failedCount"`
	TotalDurationFormatted string `json:"totalDurationFormatted"`
	ThisMonth              int64  `json:"thisMonth"`
	SuccessRate            string `json:"successRate"`
}

func newStatsCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show your transcription usage aggregates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := client.requireUser()
			if err != nil {
				return err
			}

			data, _, err := client.do(cmd.Context(), http.MethodGet,
				"/api/stats/"+url.PathEscape(userID), nil, nil)
			if err != nil {
				return err
			}
			if outputFormat(cmd) == "json" {
				return printJSON(data)
			}

			var res statsResult
			if err := json.Unmarshal(data, &res); err != nil {
				return err
			}
			fmt.Printf("total:        %d\n", res.Total)
			fmt.Printf("completed:    %d\n", res.Completed)
			fmt.Printf("processing:   %d\n", res.Processing)
			fmt.Printf("failed:       %d\n", res.Failed)
			fmt.Printf("this month:   %d\n", res.ThisMonth)
			fmt.Printf("audio:        %s\n", res.TotalDurationFormatted)
			fmt.Printf("success rate: %s\n", res.SuccessRate)
			return nil
		},
	}
}

func newDeleteCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <transcription-id>",
		Short: "Delete a transcription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, msg, err := client.do(cmd.Context(), http.MethodDelete,
				"/api/"+url.PathEscape(args[0]), client.userQuery(), nil)
			if err != nil {
				return err
			}
			if outputFormat(cmd) == "json" {
				return printJSON(data)
			}
			fmt.Println(msg)
			return nil
		},
	}
}

func printJSON(data json.RawMessage) error {
	var buf any
	if err := json.Unmarshal(data, &buf); err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(buf)
}
