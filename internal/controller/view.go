package controller

import (
	"student-risk-be/internal/pkg/serverutils"
	"student-risk-be/internal/web"

	"github.com/gofiber/fiber/v2"
)

// CSRFContextKey is where the csrf middleware leaves the token for forms.
const CSRFContextKey = "csrf"

// render fills in the data every page needs and pops the pending flashes.
func render(ctx *fiber.Ctx, sessions *serverutils.SessionManager, name, title string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	session := sessions.Current(ctx)
	data["Title"] = title
	data["Email"] = session.Email
	data["Flashes"] = sessions.PopFlashes(ctx)
	data["CSRFToken"], _ = ctx.Locals(CSRFContextKey).(string)
	return ctx.Render(name, data, web.Layout)
}
