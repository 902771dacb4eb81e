package kotlin

import (
	"fmt"
	"strings"
)

func write(sb *strings.Builder, s ...string) {
	for _, str := range s {
		sb.WriteString(str)
	}
}

func writeln(sb *strings.Builder, s ...string) {
	for _, str := range s {
		sb.WriteString(str)
	}
	sb.WriteByte('\n')
}

func writef(sb *strings.Builder, format string, a ...any) {
	fmt.Fprintf(sb, format, a...)
}
