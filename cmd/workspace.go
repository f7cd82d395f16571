package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/iksnae/nlp-playground/internal"
	"github.com/iksnae/nlp-playground/internal/export"
	"github.com/iksnae/nlp-playground/internal/render"
)

var workspaceTask string

const workspaceHelp = `Commands:
  upload <file>            upload a CSV dataset (or index a PDF for rag)
  fields                   show the configuration form
  set <field> <column>     select a column (input, target, context)
  clear <field>            unselect a field
  run                      run the experiment
  result [json]            show the current result
  preprocess <column> [option...]
  chat <text>              ask the dataset copilot, or the document for rag
  history                  show the chat transcript
  save                     archive the chat transcript
  export <format> [dir]    write the chat transcript to a file
  task <task>              switch to another task
  back                     return to the task selector
  help, quit`

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Open an interactive task workspace",
	Long: `Open an interactive workspace: upload a dataset or a document, configure the
columns, run experiments and chat with the assistant of the task.

Type 'help' inside the workspace for the command list.

Example:
  nlp-playground workspace --task classification`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := internal.NewPlayground(newService(), dashboardOptions())
		defer p.Back()

		repl := &workspaceREPL{playground: p, out: cmd.OutOrStdout()}
		if workspaceTask != "" {
			if err := repl.selectTask(workspaceTask); err != nil {
				return err
			}
		} else {
			repl.printTasks()
		}
		return repl.loop(cmd.Context(), cmd.InOrStdin())
	},
}

// workspaceREPL drives a playground from line-oriented input.
type workspaceREPL struct {
	playground *internal.Playground
	out        io.Writer
}

func (r *workspaceREPL) loop(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		r.prompt()
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		name, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)
		if name == "quit" || name == "exit" {
			return nil
		}
		if err := r.dispatch(ctx, name, rest); err != nil {
			r.printError(err)
		}
	}
	return errors.Wrap(scanner.Err(), "read input")
}

func (r *workspaceREPL) prompt() {
	label := "tasks"
	if d := r.playground.Dashboard(); d != nil {
		label = string(d.Task())
	}
	fmt.Fprint(r.out, headerStyle.Render(label+">")+" ")
}

func (r *workspaceREPL) dispatch(ctx context.Context, name, rest string) error {
	switch name {
	case "help", "?":
		fmt.Fprintln(r.out, workspaceHelp)
		return nil
	case "tasks":
		r.printTasks()
		return nil
	case "task":
		return r.selectTask(rest)
	case "back":
		r.playground.Back()
		r.printTasks()
		return nil
	}

	d := r.playground.Dashboard()
	if d == nil {
		return errors.WithHint(errors.New("no task selected"), "pick one with: task <task>")
	}
	switch name {
	case "upload", "index":
		return r.upload(ctx, d, rest)
	case "fields":
		r.printForm(d)
		return nil
	case "set":
		field, column, _ := strings.Cut(rest, " ")
		key, err := internal.ParseFieldKey(field)
		if err != nil {
			return err
		}
		if err := d.Select(key, strings.TrimSpace(column)); err != nil {
			return err
		}
		r.printForm(d)
		return nil
	case "clear":
		key, err := internal.ParseFieldKey(rest)
		if err != nil {
			return err
		}
		d.Clear(key)
		r.printForm(d)
		return nil
	case "run":
		if !d.CanRun() && !d.InFlight() {
			return errors.Wrapf(internal.ErrNotReady, "missing %v", d.Missing())
		}
		result, err := runExperiment(ctx, d)
		if err != nil {
			return err
		}
		return render.Draw(r.out, render.Render(result))
	case "result":
		return r.printResult(d, rest == "json")
	case "preprocess":
		return r.preprocess(ctx, d, rest)
	case "chat", "ask":
		return r.chat(ctx, d, rest)
	case "history":
		r.printTranscript(d)
		return nil
	case "save":
		return r.save(d)
	case "export":
		return r.export(ctx, d, rest)
	default:
		return errors.WithHint(errors.Newf("unknown command %q", name), "type 'help' for the command list")
	}
}

func (r *workspaceREPL) selectTask(name string) error {
	task, err := internal.ParseTaskType(name)
	if err != nil {
		return err
	}
	d, err := r.playground.SelectTask(task)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, headerStyle.Render("🧪 "+task.Title()))
	r.printGreeting(d)
	return nil
}

func (r *workspaceREPL) printTasks() {
	fmt.Fprintln(r.out, sectionStyle.Render("Select a task"))
	for _, t := range internal.Tasks() {
		fmt.Fprintf(r.out, "  %s %s\n", idStyle.Render(fmt.Sprintf("%-15s", t.Type)), t.Title)
	}
	fmt.Fprintln(r.out, idStyle.Render("💡 task <task> opens a workspace"))
}

func (r *workspaceREPL) printGreeting(d *internal.Dashboard) {
	for _, m := range chatOf(d).Messages() {
		printReply(r.out, m)
	}
}

func (r *workspaceREPL) upload(ctx context.Context, d *internal.Dashboard, path string) error {
	if path == "" {
		return errors.New("usage: upload <file>")
	}
	if d.Task().ArtifactKind() == internal.ArtifactDocument {
		return indexDocument(ctx, r.out, d, path)
	}
	if err := uploadDataset(ctx, d, path); err != nil {
		return err
	}
	a, _ := d.Artifact()
	internal.PrintSuccess(fmt.Sprintf("Uploaded %s (%d columns)", a.Identity, len(a.Schema)))
	r.printForm(d)
	return nil
}

func (r *workspaceREPL) printForm(d *internal.Dashboard) {
	form := d.Form()
	if len(form) == 0 {
		fmt.Fprintln(r.out, infoStyle.Render("Upload a dataset to configure the experiment."))
		return
	}
	fmt.Fprintln(r.out, sectionStyle.Render("Configuration"))
	for _, f := range form {
		value := f.Display()
		if f.IsSet {
			value = successStyle.Render(value)
		}
		fmt.Fprintf(r.out, "  %-16s %s  %s\n", f.Label, value, dateStyle.Render(strings.Join(f.Options, ", ")))
	}
	if d.CanRun() {
		fmt.Fprintln(r.out, successStyle.Render("  ▶ Ready to run"))
	} else if missing := d.Missing(); len(missing) > 0 {
		fmt.Fprintln(r.out, warningStyle.Render(fmt.Sprintf("  missing: %s", strings.Join(missing, ", "))))
	}
}

func (r *workspaceREPL) printResult(d *internal.Dashboard, asJSON bool) error {
	if msg := d.RunError(); msg != "" {
		fmt.Fprintln(r.out, errorStyle.Render(msg))
	}
	result := d.Result()
	if result == nil {
		fmt.Fprintln(r.out, infoStyle.Render("No result yet. Configure the columns and type 'run'."))
		return nil
	}
	if asJSON {
		return render.JSON(r.out, result)
	}
	return render.Draw(r.out, render.Render(result))
}

func (r *workspaceREPL) preprocess(ctx context.Context, d *internal.Dashboard, rest string) error {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return errors.New("usage: preprocess <column> [option...]")
	}
	options := map[string]bool{}
	names := fields[1:]
	if len(names) == 0 {
		names = preprocessOptions[:3]
	}
	for _, o := range names {
		if !contains(preprocessOptions, o) {
			return errors.Newf("unknown option %q (supported: %v)", o, preprocessOptions)
		}
		options[o] = true
	}
	resp, err := d.Preprocess(ctx, fields[0], options)
	if err != nil {
		return userError(err, "Preprocessing failed.")
	}
	for i, row := range resp.Preview {
		fmt.Fprintf(r.out, "  %s %v\n", idStyle.Render(fmt.Sprintf("%2d.", i+1)), row["processed_text"])
	}
	return nil
}

func (r *workspaceREPL) chat(ctx context.Context, d *internal.Dashboard, text string) error {
	var (
		reply internal.ChatMessage
		err   error
	)
	if dc := d.DocumentChat(); dc != nil {
		reply, err = dc.Ask(ctx, text)
		if err == nil {
			printReply(r.out, reply)
			printCitations(r.out, dc.Citations())
		}
	} else {
		reply, err = d.Copilot().Submit(ctx, text)
		if err == nil {
			printReply(r.out, reply)
		}
	}
	return err
}

func (r *workspaceREPL) printTranscript(d *internal.Dashboard) {
	for _, m := range chatOf(d).Messages() {
		label := "👤 User"
		style := userMessageStyle
		if m.Role == internal.RoleBot {
			label, style = "🤖 Bot", assistantMessageStyle
		}
		if m.Kind == internal.KindFailure {
			style = errorStyle
		}
		fmt.Fprintln(r.out, style.Render(label)+" "+timestampStyle.Render(m.Time.Format("15:04:05")))
		fmt.Fprintln(r.out, messageContentStyle.Render(wrapText(m.Text, 80)))
	}
}

// snapshot returns the transcript of the task's chat session.
func (r *workspaceREPL) snapshot(d *internal.Dashboard) *internal.Session {
	var s *internal.Session
	if dc := d.DocumentChat(); dc != nil {
		s = dc.Snapshot()
	} else {
		s = d.Copilot().Snapshot()
	}
	s.Metadata.Task = string(d.Task())
	return s
}

func (r *workspaceREPL) save(d *internal.Dashboard) error {
	db, err := openArchive()
	if err != nil {
		return err
	}
	defer db.Close()

	s := r.snapshot(d)
	if err := internal.SaveSession(db, s); err != nil {
		return err
	}
	internal.PrintSuccess(fmt.Sprintf("Saved transcript %s to %s", s.ID, cfg.ArchivePath))
	return nil
}

func (r *workspaceREPL) export(ctx context.Context, d *internal.Dashboard, rest string) error {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return errors.Newf("usage: export <format> [dir] (formats: %s)", strings.Join(export.Formats, ", "))
	}
	exporter, err := export.NewExporter(fields[0])
	if err != nil {
		return err
	}
	dir := "./exports"
	if len(fields) > 1 {
		dir = fields[1]
	}
	written, err := writeSessions(ctx, exporter, []*internal.Session{r.snapshot(d)}, dir)
	if err != nil {
		return err
	}
	if written == 0 {
		return &internal.ExportError{Format: fields[0], Err: errors.New("nothing written")}
	}
	internal.PrintSuccess(fmt.Sprintf("Exported transcript to %s", dir))
	return nil
}

func (r *workspaceREPL) printError(err error) {
	fmt.Fprintln(r.out, errorStyle.Render("✗ "+err.Error()))
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintln(r.out, infoStyle.Render("  "+hint))
	}
}

// chatSession is what the REPL needs from either assistant.
type chatSession interface {
	Messages() []internal.ChatMessage
}

func chatOf(d *internal.Dashboard) chatSession {
	if dc := d.DocumentChat(); dc != nil {
		return dc
	}
	return d.Copilot()
}

func init() {
	rootCmd.AddCommand(workspaceCmd)
	workspaceCmd.Flags().StringVarP(&workspaceTask, "task", "t", "", "Task to open (see: nlp-playground tasks)")
}
