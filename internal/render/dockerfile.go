// SPDX-License-Identifier: MPL-2.0

// Package render turns a provisioning plan into a Dockerfile and build
// context. Plans rendered here are built from a symbolic expansion, so arg
// references survive as ${NAME} and the container engine resolves them at
// build time; secret values never reach the rendered text.
package render

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"kiln-cli/internal/bake"
	"kiln-cli/pkg/kilnfile"
)

// Dockerfile renders the plan as Dockerfile text. Step order is taken from
// the plan verbatim; this function only maps kinds to directives.
func Dockerfile(plan *bake.Plan) string {
	var sb strings.Builder

	sb.WriteString("# Generated by kiln; edit the kilnfile instead.\n")
	if plan.Description != "" {
		fmt.Fprintf(&sb, "# %s\n", plan.Description)
	}
	sb.WriteString("\n")

	// Args referenced by the base image must be declared before FROM to be
	// visible there. They are redeclared below for the RUN stages.
	for _, name := range kilnfile.PlaceholderNames(plan.Image) {
		fmt.Fprintf(&sb, "ARG %s\n", name)
	}
	fmt.Fprintf(&sb, "FROM %s\n", plan.Image)

	if len(plan.Labels) > 0 {
		sb.WriteString("\n")
		for _, k := range slices.Sorted(maps.Keys(plan.Labels)) {
			fmt.Fprintf(&sb, "LABEL %q=%q\n", k, plan.Labels[k])
		}
	}

	if len(plan.Args) > 0 {
		sb.WriteString("\n")
		for _, arg := range plan.Args {
			// A secret default baked into the file would defeat the
			// point of marking it secret.
			if arg.Default != "" && !arg.Secret {
				fmt.Fprintf(&sb, "ARG %s=%s\n", arg.Name, arg.Default)
			} else {
				fmt.Fprintf(&sb, "ARG %s\n", arg.Name)
			}
		}
	}

	section := ""
	for _, step := range plan.Steps {
		if s := stepSection(step.Kind); s != "" && s != section {
			section = s
			fmt.Fprintf(&sb, "\n# %s\n", section)
		}
		writeDirective(&sb, step)
	}

	return sb.String()
}

func stepSection(kind bake.StepKind) string {
	switch kind {
	case bake.KindPackageUpdate, bake.KindPackageUpgrade, bake.KindPackageInstall,
		bake.KindPythonInstall, bake.KindSetup:
		return "Packages"
	case bake.KindClone, bake.KindCheckout:
		return "Dependencies"
	case bake.KindEnvSet:
		return "Environment"
	case bake.KindGroup, bake.KindUser, bake.KindAdminGroup, bake.KindPassword,
		bake.KindSymlink, bake.KindChown, bake.KindSwitchUser:
		return "Account"
	case bake.KindRCAppend:
		return "Shell"
	case bake.KindExpose, bake.KindWorkdir:
		return "Image surface"
	default:
		return ""
	}
}

func writeDirective(sb *strings.Builder, step bake.Step) {
	switch step.Kind {
	case bake.KindBase:
		// Emitted as the FROM line above.
	case bake.KindEnvSet:
		fmt.Fprintf(sb, "ENV %s=%q\n", step.Name, step.Value)
	case bake.KindRCAppend:
		fmt.Fprintf(sb, "RUN %s\n", bake.AppendLineCommand(step.Line, step.File))
	case bake.KindExpose:
		fmt.Fprintf(sb, "EXPOSE %s\n", step.Port)
	case bake.KindSwitchUser:
		fmt.Fprintf(sb, "USER %s\n", step.User)
	case bake.KindWorkdir:
		fmt.Fprintf(sb, "WORKDIR %s\n", step.Dir)
	default:
		if step.Shell != "" {
			fmt.Fprintf(sb, "RUN %s\n", step.Shell)
		} else if len(step.Argv) > 0 {
			fmt.Fprintf(sb, "RUN %s\n", strings.Join(step.Argv, " "))
		}
	}
}
