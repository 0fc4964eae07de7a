/*
Package cli holds helpers shared by the nanoagent commands: error types that
map to exit codes, table output in text, JSON and CSV, a round progress bar
and signal handling.

Output Formatting:

Anything that implements Table can be rendered in every format:

	formatter, err := cli.NewFormatter(cli.FormatCSV)
	if err != nil {
		return err
	}
	return formatter.FormatTo(os.Stdout, cli.WeightsTable(engine.Weights()))

Signal Handling:

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
*/
package cli
