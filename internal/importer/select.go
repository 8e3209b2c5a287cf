package importer

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/SDU-Vikings-Racing-Team/EL-KiCad-Library/internal/libtable"
)

// MenuSelector returns a SelectFunc that prints a numbered list of choices to
// w and reads the chosen number from r. One reader is shared across calls so
// buffered input for later archives is not lost.
func MenuSelector(r io.Reader, w io.Writer) SelectFunc {
	reader := bufio.NewReader(r)
	return func(archive string, choices []string) (int, error) {
		fmt.Fprintf(w, "\nProcessing %s\n", archive)
		fmt.Fprintln(w, "Choose destination footprint library:")
		for i, c := range choices {
			fmt.Fprintf(w, "  %d) %s\n", i+1, c)
		}
		fmt.Fprintf(w, "Enter number [1-%d]: ", len(choices))

		line, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return 0, fmt.Errorf("reading selection: %w", err)
		}

		num, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || num < 1 || num > len(choices) {
			return 0, fmt.Errorf("invalid selection %q: choose 1-%d", strings.TrimSpace(line), len(choices))
		}
		return num - 1, nil
	}
}

// FixedSelector always picks the library named name. The ".pretty" suffix is
// optional and the comparison ignores case, since sub-library folders have
// been renamed between VIKING_Connectors and VIKING_connectors styles.
func FixedSelector(name string) SelectFunc {
	want := strings.TrimSuffix(strings.ToLower(name), libtable.FootprintSuffix)
	return func(archive string, choices []string) (int, error) {
		for i, c := range choices {
			if strings.TrimSuffix(strings.ToLower(c), libtable.FootprintSuffix) == want {
				return i, nil
			}
		}
		return 0, fmt.Errorf("footprint library %q not found (have %s)", name, strings.Join(choices, ", "))
	}
}
