package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/xeonx/timeago"

	"github.com/procare-io/srportal/internal/models"
	"github.com/procare-io/srportal/sdk/go/client"
	"github.com/procare-io/srportal/sdk/go/types"
)

var requestsCmd = &cobra.Command{
	Use:     "requests",
	Aliases: []string{"req"},
	Short:   "List and manage service requests",
}

var requestsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the requests you can see",
	Long: `List service requests, newest first.

--status, --from, --to, --item and --serial are applied by the API.
--urgency and --search narrow the result locally; --search matches the
request code, contact name or serial number.`,
	Args: cobra.NoArgs,
	RunE: runRequestsList,
}

var requestsShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one request with its attachments and history",
	Args:  cobra.ExactArgs(1),
	RunE:  runRequestsShow,
}

var requestsSetStatusCmd = &cobra.Command{
	Use:   "set-status ID STATUS",
	Short: "Move a request to a new status (staff only)",
	Long: `Move a request to a new status.

STATUS is one of Submitted, "In Progress", Resolved, Closed or Cancelled;
case and the separator of "in-progress" do not matter.`,
	Args: cobra.ExactArgs(2),
	RunE: runRequestsSetStatus,
}

var requestsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download the filtered request list as an Excel workbook",
	Args:  cobra.NoArgs,
	RunE:  runRequestsExport,
}

var requestsUploadCmd = &cobra.Command{
	Use:   "upload ID FILE...",
	Short: "Attach files to a request",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runRequestsUpload,
}

var requestsDownloadCmd = &cobra.Command{
	Use:   "download ID FILE_NAME",
	Short: "Download an attachment",
	Args:  cobra.ExactArgs(2),
	RunE:  runRequestsDownload,
}

var (
	statusFlag  string
	urgencyFlag string
	searchFlag  string
	fromFlag    string
	toFlag      string
	itemFlag    string
	serialFlag  string
	sortFlag    string
	ascFlag     bool
	countsFlag  bool

	exportOutputFlag   string
	downloadOutputFlag string
)

func init() {
	addFilterFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&statusFlag, "status", "", "Only requests in this status")
		cmd.Flags().StringVar(&fromFlag, "from", "", "Submitted on or after this date (YYYY-MM-DD)")
		cmd.Flags().StringVar(&toFlag, "to", "", "Submitted on or before this date (YYYY-MM-DD)")
		cmd.Flags().StringVar(&itemFlag, "item", "", "Only this item number")
		cmd.Flags().StringVar(&serialFlag, "serial", "", "Only this serial number")
	}
	addFilterFlags(requestsListCmd)
	addFilterFlags(requestsExportCmd)

	requestsListCmd.Flags().StringVar(&urgencyFlag, "urgency", "", "Only this urgency (Normal, Urgent, Critical)")
	requestsListCmd.Flags().StringVar(&searchFlag, "search", "", "Match request code, contact or serial number")
	requestsListCmd.Flags().StringVar(&sortFlag, "sort", string(client.SortByDate), "Sort by date, urgency or status")
	requestsListCmd.Flags().BoolVar(&ascFlag, "asc", false, "Sort ascending")
	requestsListCmd.Flags().BoolVar(&countsFlag, "counts", false, "Print the number of requests per status")

	requestsExportCmd.Flags().StringVarP(&exportOutputFlag, "output", "o", "requests.xlsx", `Output file, "-" for stdout`)
	requestsDownloadCmd.Flags().StringVarP(&downloadOutputFlag, "output", "o", "", "Output file (default: the attachment name)")

	requestsCmd.AddCommand(requestsListCmd, requestsShowCmd, requestsSetStatusCmd,
		requestsExportCmd, requestsUploadCmd, requestsDownloadCmd)
	rootCmd.AddCommand(requestsCmd)
}

// parseStatus accepts any case and "-" or "_" in place of the space.
func parseStatus(s string) (types.RequestStatus, error) {
	norm := strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(s))
	for _, st := range models.RequestStatuses {
		if strings.EqualFold(string(st), norm) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

func parseUrgency(s string) (models.Urgency, error) {
	for _, u := range []models.Urgency{models.UrgencyNormal, models.UrgencyUrgent, models.UrgencyCritical} {
		if strings.EqualFold(string(u), strings.TrimSpace(s)) {
			return u, nil
		}
	}
	return "", fmt.Errorf("unknown urgency %q", s)
}

func parseDate(flag, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("--%s: expected YYYY-MM-DD, got %q", flag, value)
	}
	return &t, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid request ID %q", s)
	}
	return id, nil
}

// requestFilter builds the server-side filter from the flags.
func requestFilter() (*types.RequestFilter, error) {
	f := &types.RequestFilter{
		ItemNumber:   strings.TrimSpace(itemFlag),
		SerialNumber: strings.TrimSpace(serialFlag),
	}
	if statusFlag != "" {
		st, err := parseStatus(statusFlag)
		if err != nil {
			return nil, err
		}
		f.Status = st
	}
	var err error
	if f.FromDate, err = parseDate("from", fromFlag); err != nil {
		return nil, err
	}
	if f.ToDate, err = parseDate("to", toFlag); err != nil {
		return nil, err
	}
	return f, nil
}

func runRequestsList(cmd *cobra.Command, args []string) error {
	filter, err := requestFilter()
	if err != nil {
		return err
	}
	local := client.DashboardFilter{Search: searchFlag}
	if urgencyFlag != "" {
		if local.Urgency, err = parseUrgency(urgencyFlag); err != nil {
			return err
		}
	}
	key := client.SortKey(strings.ToLower(sortFlag))
	switch key {
	case client.SortByDate, client.SortByUrgency, client.SortByStatus:
	default:
		return fmt.Errorf("--sort must be date, urgency or status")
	}

	_, c, err := requireSession()
	if err != nil {
		return err
	}
	all, err := c.Requests.List(cmd.Context(), filter)
	if err != nil {
		return err
	}
	shown := client.FilterRequests(all, local)
	client.SortRequests(shown, key, ascFlag)

	out := cmd.OutOrStdout()
	if len(shown) == 0 {
		fmt.Fprintln(out, "No requests found.")
	} else if err := writeRequestTable(out, shown, time.Now()); err != nil {
		return err
	}
	if countsFlag {
		fmt.Fprintln(out)
		writeStatusCounts(out, client.StatusCounts(shown))
	}
	return nil
}

func writeRequestTable(w io.Writer, reqs []types.ServiceRequest, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tSTATUS\tURGENCY\tCUSTOMER\tSERIAL\tREASON\tSUBMITTED")
	for _, r := range reqs {
		customer := r.CustomerName
		if customer == "" {
			customer = r.ContactName
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.RequestCode, r.Status, r.UrgencyLevel, dash(customer), dash(r.SerialNumber),
			r.MainReason, timeago.English.FormatReference(r.SubmittedDate, now))
	}
	return tw.Flush()
}

func writeStatusCounts(w io.Writer, counts map[types.RequestStatus]int) {
	parts := make([]string, 0, len(models.RequestStatuses))
	for _, st := range models.RequestStatuses {
		parts = append(parts, fmt.Sprintf("%s: %d", st, counts[st]))
	}
	fmt.Fprintln(w, strings.Join(parts, "  "))
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func runRequestsShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	_, c, err := requireSession()
	if err != nil {
		return err
	}
	r, err := c.Requests.Get(cmd.Context(), id)
	if err != nil {
		return err
	}
	activity, err := c.Requests.Activity(cmd.Context(), id)
	if err != nil {
		return err
	}
	return writeRequestDetail(cmd.OutOrStdout(), r, activity, time.Now())
}

func writeRequestDetail(w io.Writer, r *types.ServiceRequest, activity []types.ActivityLog, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(tw, "%s\t%s\n", label, value)
		}
	}
	row("Request", fmt.Sprintf("%s (#%d)", r.RequestCode, r.ID))
	row("Type", string(r.RequestType))
	row("Status", string(r.Status))
	row("Urgency", string(r.UrgencyLevel))
	row("Customer", strings.TrimSpace(r.CustomerNumber+" "+r.CustomerName))
	row("Contact", fmt.Sprintf("%s <%s> %s", r.ContactName, r.ContactEmail, r.ContactPhone))
	row("Country", r.CountryCode)
	row("Item", strings.TrimSpace(r.ItemNumber+" "+r.ItemDescription))
	row("Serial", r.SerialNumber)
	row("Lot", r.LotNumber)
	reason := r.MainReason
	if r.SubReason != "" {
		reason += " / " + r.SubReason
	}
	row("Reason", reason)
	row("Description", r.IssueDescription)
	if r.SafetyPatientInvolved {
		row("Patient involved", "Yes")
	}
	if r.LoanerRequired {
		row("Loaner", dash(r.LoanerDetails))
	}
	if r.QuoteRequired {
		row("Quote", "Required")
	}
	if r.PickupDate != "" {
		row("Pickup", strings.TrimSpace(r.PickupDate+" "+r.PickupTime))
	}
	row("PO reference", r.POReferenceNumber)
	row("Submitted", fmt.Sprintf("%s by %s (%s)", r.SubmittedDate.Format("2006-01-02 15:04"),
		r.SubmittedByName, timeago.English.FormatReference(r.SubmittedDate, now)))
	row("Notes", r.CustomerNotes)
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Attachments) > 0 {
		fmt.Fprintln(w, "\nAttachments")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, a := range r.Attachments {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", a.FileName, humanSize(a.FileSize), a.UploadedBy)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(activity) > 0 {
		fmt.Fprintln(w, "\nHistory")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, a := range activity {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", a.PerformedDate.Format("2006-01-02 15:04"), a.PerformedBy, a.ActivityDescription)
		}
		return tw.Flush()
	}
	return nil
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}

func runRequestsSetStatus(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	status, err := parseStatus(args[1])
	if err != nil {
		return err
	}
	_, c, err := requireSession()
	if err != nil {
		return err
	}
	resp, err := c.Requests.UpdateStatus(cmd.Context(), id, status)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (now %s)\n", resp.Message, resp.NewStatus)
	return nil
}

func runRequestsExport(cmd *cobra.Command, args []string) error {
	filter, err := requestFilter()
	if err != nil {
		return err
	}
	_, c, err := requireSession()
	if err != nil {
		return err
	}
	if exportOutputFlag == "-" {
		return c.Requests.Export(cmd.Context(), filter, cmd.OutOrStdout())
	}
	if err := writeFile(exportOutputFlag, func(w io.Writer) error {
		return c.Requests.Export(cmd.Context(), filter, w)
	}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", exportOutputFlag)
	return nil
}

func runRequestsUpload(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	_, c, err := requireSession()
	if err != nil {
		return err
	}
	res, err := c.Files.Upload(cmd.Context(), id, args[1:]...)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, f := range res.Files {
		fmt.Fprintf(out, "Attached %s (%s)\n", f.FileName, humanSize(f.FileSize))
	}
	if res.Message != "" {
		fmt.Fprintln(out, res.Message)
	}
	return nil
}

func runRequestsDownload(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	name := args[1]
	_, c, err := requireSession()
	if err != nil {
		return err
	}
	link, err := c.Files.DownloadLink(cmd.Context(), id, name)
	if err != nil {
		return err
	}
	target := downloadOutputFlag
	if target == "" {
		target = filepath.Base(name)
	}
	if target == "-" {
		return c.Files.Download(cmd.Context(), link, cmd.OutOrStdout())
	}
	if err := writeFile(target, func(w io.Writer) error {
		return c.Files.Download(cmd.Context(), link, w)
	}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s\n", target)
	return nil
}

// writeFile removes a partially written file when fill fails.
func writeFile(path string, fill func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fill(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
