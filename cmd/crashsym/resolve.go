// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	crashsym "github.com/saferwall/crashsym"
	"github.com/spf13/cobra"
)

func newResolveCmd() *cobra.Command {
	var symFiles []string
	var addrs []string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve one or more (module,base,instruction) frames against loaded symbol files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(symFiles, addrs)
		},
	}

	cmd.Flags().StringArrayVarP(&symFiles, "sym", "s", nil,
		"module=path.sym, may be repeated to load several modules")
	cmd.Flags().StringArrayVarP(&addrs, "frame", "f", nil,
		"module:base:instruction (all hex except module), may be repeated")

	return cmd
}

func runResolve(symFiles, frames []string) error {
	resolver := crashsym.NewResolver()

	for _, spec := range symFiles {
		name, path, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("invalid --sym %q, want module=path.sym", spec)
		}
		ok, err := resolver.LoadModuleFile(name, path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", name, err)
		}
		if !ok {
			return fmt.Errorf("failed to parse symbol file for module %q", name)
		}
		log.Printf("loaded module %s from %s", name, path)
	}

	for _, spec := range frames {
		frame, err := parseFrameSpec(spec)
		if err != nil {
			return err
		}
		sym, unwind, found := resolver.FillFrame(frame)
		fmt.Println(prettyPrint(frame, sym, unwind, found))
	}

	return nil
}

func parseFrameSpec(spec string) (crashsym.Frame, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return crashsym.Frame{}, fmt.Errorf("invalid --frame %q, want module:base:instruction", spec)
	}
	base, err := strconv.ParseUint(parts[1], 16, 64)
	if err != nil {
		return crashsym.Frame{}, fmt.Errorf("invalid base in %q: %w", spec, err)
	}
	insn, err := strconv.ParseUint(parts[2], 16, 64)
	if err != nil {
		return crashsym.Frame{}, fmt.Errorf("invalid instruction in %q: %w", spec, err)
	}
	return crashsym.Frame{
		ModuleName:  parts[0],
		ModuleBase:  crashsym.Addr(base),
		Instruction: crashsym.Addr(insn),
	}, nil
}

type resolvedFrame struct {
	Module       string               `json:"module"`
	Found        bool                 `json:"found"`
	FunctionName *string              `json:"function_name,omitempty"`
	SourceFile   *string              `json:"source_file,omitempty"`
	SourceLine   *int                 `json:"source_line,omitempty"`
	Unwind       *crashsym.UnwindInfo `json:"unwind,omitempty"`
}

func prettyPrint(frame crashsym.Frame, sym crashsym.FrameSymbol, unwind crashsym.UnwindInfo, found bool) string {
	out := resolvedFrame{
		Module:       frame.ModuleName,
		Found:        found,
		FunctionName: sym.FunctionName,
		SourceFile:   sym.SourceFile,
		SourceLine:   sym.SourceLine,
	}
	if unwind.Valid {
		out.Unwind = &unwind
	}

	buf, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf("error marshaling frame: %v", err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf, "", "\t"); err != nil {
		return string(buf)
	}
	return pretty.String()
}
