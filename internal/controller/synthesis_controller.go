package controller

import (
	"time"

	"source-intel-be/internal/dto"
	"source-intel-be/internal/pkg/serverutils"
	"source-intel-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISynthesisController interface {
	RegisterRoutes(r fiber.Router)
	Classify(ctx *fiber.Ctx) error
	Select(ctx *fiber.Ctx) error
	Analytics(ctx *fiber.Ctx) error
	Decisions(ctx *fiber.Ctx) error
	ListSources(ctx *fiber.Ctx) error
	ShowSource(ctx *fiber.Ctx) error
	UpsertSource(ctx *fiber.Ctx) error
	UpdateCredibility(ctx *fiber.Ctx) error
	RemoveSource(ctx *fiber.Ctx) error
	ScoreSource(ctx *fiber.Ctx) error
}

type synthesisController struct {
	service service.ISynthesisService
}

func NewSynthesisController(service service.ISynthesisService) ISynthesisController {
	return &synthesisController{service: service}
}

func (c *synthesisController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/synthesis/v1")
	h.Post("classify", c.Classify)
	h.Post("select", c.Select)
	h.Get("sessions/:id/analytics", c.Analytics)
	h.Get("sessions/:id/decisions", c.Decisions)
	h.Get("sources", c.ListSources)
	h.Get("sources/:id", c.ShowSource)
	h.Put("sources/:id", c.UpsertSource)
	h.Delete("sources/:id", c.RemoveSource)
	h.Get("sources/:id/score", c.ScoreSource)
	h.Post("sources/:id/credibility", c.UpdateCredibility)
}

// parseBody decodes and validates a JSON body.
func parseBody(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return serverutils.ValidateRequest(req)
}

func (c *synthesisController) Classify(ctx *fiber.Ctx) error {
	var req dto.ClassifyQueryRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.ClassifyQuery(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success classify query", res))
}

func (c *synthesisController) Select(ctx *fiber.Ctx) error {
	var req dto.SelectSourcesRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.SelectSources(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success select sources", res))
}

func (c *synthesisController) Analytics(ctx *fiber.Ctx) error {
	res, err := c.service.SessionAnalytics(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session analytics", res))
}

func (c *synthesisController) Decisions(ctx *fiber.Ctx) error {
	q := dto.DecisionQuery{
		Limit:        ctx.QueryInt("limit", 0),
		Context:      ctx.Query("context"),
		OnlySwitches: ctx.QueryBool("switches_only", false),
	}
	if since := ctx.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "since must be an RFC 3339 timestamp")
		}
		q.Since = t
	}

	res, err := c.service.SessionDecisions(ctx.UserContext(), ctx.Params("id"), q)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session decisions", res))
}

func (c *synthesisController) ListSources(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get sources", c.service.ListSources(ctx.UserContext())))
}

func (c *synthesisController) ShowSource(ctx *fiber.Ctx) error {
	res, err := c.service.GetSource(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show source", res))
}

func (c *synthesisController) UpsertSource(ctx *fiber.Ctx) error {
	var req dto.UpsertSourceRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.UpsertSource(ctx.UserContext(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success upsert source", res))
}

func (c *synthesisController) UpdateCredibility(ctx *fiber.Ctx) error {
	var req dto.CredibilityUpdateRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.UpdateCredibility(ctx.UserContext(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update source credibility", res))
}

func (c *synthesisController) RemoveSource(ctx *fiber.Ctx) error {
	if err := c.service.RemoveSource(ctx.UserContext(), ctx.Params("id")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success remove source", nil))
}

func (c *synthesisController) ScoreSource(ctx *fiber.Ctx) error {
	res, err := c.service.ScoreSource(ctx.UserContext(), ctx.Params("id"), ctx.Query("context"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success score source", res))
}
