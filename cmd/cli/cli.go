package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/acuvity/sharepoint-flow/collection"
	"github.com/acuvity/sharepoint-flow/config"
)

// Flags registers the cli command flags.
func Flags(cmd *cobra.Command) {
	cmd.Flags().String("node", "", "Name of the node to run; lists nodes when empty")
	cmd.Flags().String("args", "", "Node arguments as a JSON object")
	cmd.Flags().String("args-file", "", "File holding the node arguments as a JSON object")
	cmd.Flags().String("context", "", "Initial conversation context as a JSON object")
}

func Run(cmd *cobra.Command, args []string) error {

	name, _ := cmd.Flags().GetString("node")
	if name == "" {
		for _, n := range collection.Names() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", n, collection.Nodes[n].Extension)
		}
		return nil
	}

	nodeArgs, err := readArgs(cmd)
	if err != nil {
		return err
	}

	var initial map[string]any
	if raw, _ := cmd.Flags().GetString("context"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &initial); err != nil {
			return errors.Wrap(err, "context is not a JSON object")
		}
	}

	input, err := collection.Execute(cmd.Context(), config.FromViper(), name, nodeArgs, initial)
	if err != nil {
		return errors.Wrapf(err, "error running %s", name)
	}

	out, err := json.MarshalIndent(input.Context.Full(), "", "  ")
	if err != nil {
		return errors.Wrap(err, "error encoding context")
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

// readArgs merges --args-file and --args, the latter winning.
func readArgs(cmd *cobra.Command) (map[string]any, error) {
	nodeArgs := map[string]any{}

	if path, _ := cmd.Flags().GetString("args-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "error reading args file")
		}
		if err := json.Unmarshal(data, &nodeArgs); err != nil {
			return nil, errors.Wrapf(err, "%s is not a JSON object", path)
		}
	}

	if raw, _ := cmd.Flags().GetString("args"); raw != "" {
		var inline map[string]any
		if err := json.Unmarshal([]byte(raw), &inline); err != nil {
			return nil, errors.Wrap(err, "args is not a JSON object")
		}
		for k, v := range inline {
			nodeArgs[k] = v
		}
	}

	return nodeArgs, nil
}
