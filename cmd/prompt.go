package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// promptInt asks for an integer of at least minValue on out and reads the
// answer from in, asking again until a valid value is entered.
func promptInt(in *bufio.Reader, out io.Writer, question string, minValue int64) (int64, error) {
	for {
		_, _ = fmt.Fprint(out, question)
		line, err := in.ReadString('\n')
		answer := strings.TrimSpace(line)
		if answer != "" {
			v, perr := strconv.ParseInt(answer, 10, 64)
			if perr == nil && v >= minValue {
				return v, nil
			}
			_, _ = fmt.Fprintf(out, "Please enter a whole number of at least %d.\n", minValue)
		}
		if err != nil {
			if err == io.EOF {
				return 0, fmt.Errorf("no answer to %q: %w", strings.TrimSpace(question), io.ErrUnexpectedEOF)
			}
			return 0, err
		}
	}
}

// promptPoolAndRuntime reads the pool size and run length interactively.
func promptPoolAndRuntime(in io.Reader, out io.Writer) (servers int, runtime int64, err error) {
	r := bufio.NewReader(in)
	n, err := promptInt(r, out, "Please enter the number of servers: ", 1)
	if err != nil {
		return 0, 0, err
	}
	runtime, err = promptInt(r, out, "Please enter the amount of time you would like to run the load balancer: ", 0)
	if err != nil {
		return 0, 0, err
	}
	return int(n), runtime, nil
}
