package apitest

import "fmt"

func remove(ids []string, id string) []string {
	out := make([]string, 0, len(ids))

	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}

	return out
}

func idFor(prefix string, n int) string {
	return fmt.Sprintf("%s%d", prefix, n)
}
