package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/crediflow/collections-service/internal/auth"
	"github.com/crediflow/collections-service/pkg/util"
)

func requirePrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, util.NewUnauthorized("authentication required")
	}
	return principal, nil
}

func queryStrPtr(c *fiber.Ctx, name string) *string {
	v := c.Query(name)
	if v == "" {
		return nil
	}
	return &v
}

func queryPageSize(c *fiber.Ctx) int {
	n, err := strconv.Atoi(c.Query("pageSize"))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// setETag advertises the current optimistic-concurrency token on reads so
// clients can echo it back via If-Match on their next PATCH.
func setETag(c *fiber.Ctx, tag string) {
	c.Set(fiber.HeaderETag, tag)
}
