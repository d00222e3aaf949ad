package repository

import "fmt"

func placeholderClause(prefix string, n int) string {
	return fmt.Sprintf("%s$%d", prefix, n)
}
