package sql

import "strings"

// isSafeIdentifier 标识符由 [A-Za-z_][A-Za-z0-9_]* 组成，允许以 "." 分段
func isSafeIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for _, part := range strings.Split(name, ".") {
		if part == "" || isDigit(part[0]) {
			return false
		}
		for i := 0; i < len(part); i++ {
			if c := part[i]; !(isLetter(c) || isDigit(c) || c == '_') {
				return false
			}
		}
	}
	return true
}

func isLetter(c byte) bool { return (c|0x20) >= 'a' && (c|0x20) <= 'z' }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
