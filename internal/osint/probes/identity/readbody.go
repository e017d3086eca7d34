package identity

import (
	"io"
	"net/http"
)

func readLimited(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	return string(body)
}
