package bootstrap

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/stackup-sh/stackup/internal/fetch"
	"github.com/stackup-sh/stackup/internal/health"
	"github.com/stackup-sh/stackup/internal/migrate"
)

// Report collects everything the operator needs to see after a bootstrap
// pass: per-service reachability, fetched files, and migration state.
type Report struct {
	Services     []health.Result
	Fetches      []fetch.Result
	Containers   []ContainerStatus
	Migration    *migrate.Result
	Instructions []string
}

type ContainerStatus struct {
	Service string
	State   string
}

func (r *Report) Render(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Stack status")
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  SERVICE\tSTATUS\tURL")
	for _, svc := range r.Services {
		status := "ready"
		if svc.State != health.StateReady {
			status = "still starting"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", svc.Endpoint.Name, status, svc.Endpoint.URL)
	}
	tw.Flush()

	if len(r.Containers) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Containers")
		fmt.Fprintln(w)
		tw = tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  SERVICE\tSTATE")
		for _, c := range r.Containers {
			fmt.Fprintf(tw, "  %s\t%s\n", c.Service, c.State)
		}
		tw.Flush()
	}

	if fetched := r.fetchedFiles(); len(fetched) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Fetched support files")
		for _, f := range fetched {
			fmt.Fprintf(w, "  %s\n", f.Path)
		}
	}

	if r.Migration != nil {
		fmt.Fprintln(w)
		if r.Migration.State == migrate.StateConfigured {
			fmt.Fprintln(w, "Database: schema is configured")
		} else {
			fmt.Fprintln(w, "Database: migration required")
			for _, step := range r.Instructions {
				fmt.Fprintf(w, "  %s\n", step)
			}
		}
	}
	fmt.Fprintln(w)
}

func (r *Report) fetchedFiles() []fetch.Result {
	var out []fetch.Result
	for _, f := range r.Fetches {
		if f.Fetched {
			out = append(out, f)
		}
	}
	return out
}
