package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"pto-bot-backend/controllers"
	"pto-bot-backend/db"
	balancestore "pto-bot-backend/lib/balance/store"
	pdfexport "pto-bot-backend/lib/export/pdf"
	xlsexport "pto-bot-backend/lib/export/xls"
	ptohandler "pto-bot-backend/lib/pto"
	ptostore "pto-bot-backend/lib/pto/store"
	"pto-bot-backend/lib/roster"
	authutils "pto-bot-backend/lib/utils/auth-utils"
	apimodels "pto-bot-backend/models/api"
	ptoapimodels "pto-bot-backend/models/api/pto"
)

type adminApiController struct {
	controllers.BaseAPIController
	requestStore ptostore.Provider
	balanceStore balancestore.Provider
}

func InitAdminApiRouters(api fiber.Router) {
	c := adminApiController{
		requestStore: ptostore.NewInstance(db.DB),
		balanceStore: balancestore.NewInstance(db.DB),
	}
	api.Get("/balance/:id", c.getBalance)
	api.Get("/history/:id", c.getHistory)
	api.Get("/stats/:id", c.getStats)
	api.Post("/roster/import", c.importRoster)
	api.Get("/export/balances", c.exportBalances)
	api.Get("/export/history/:id", c.exportHistory)
	api.Get("/export/statement/:id", c.exportStatement)
}

func (c *adminApiController) getBalance(ctx *fiber.Ctx) error {
	userID, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	balance, err := c.balanceStore.GetBalance(userID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "failed to read balance")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(ptoapimodels.BalanceConvert(balance)))
}

func (c *adminApiController) getHistory(ctx *fiber.Ctx) error {
	userID, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	list, err := c.requestStore.HistoryForUser(userID, nil)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "failed to read request history")
	}
	result := make([]ptoapimodels.RequestView, 0, len(list))
	for _, rec := range list {
		result = append(result, ptoapimodels.RequestConvert(rec))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

func (c *adminApiController) getStats(ctx *fiber.Ctx) error {
	userID, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	stats, err := ptohandler.Instance.HistoryStats(userID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "failed to compute history stats")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(stats))
}

func (c *adminApiController) importRoster(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError("roster file is missing"))
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "failed to open roster file")
	}
	defer file.Close()

	logger := c.GetLogger(ctx).WithField("actor", authutils.GetSubject(ctx))
	result, err := roster.Instance.ImportXLSX(file)
	if err != nil {
		return c.SendError(ctx, logger, err, "failed to import roster")
	}
	logger.WithField("imported", result.Imported).Info("roster imported")
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

func (c *adminApiController) exportBalances(ctx *fiber.Ctx) error {
	list, err := c.balanceStore.List()
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "failed to list balances")
	}
	buf, err := xlsexport.Instance.ExportBalances(list)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "failed to build balances export")
	}
	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="balances.xlsx"`)
	return ctx.Status(fiber.StatusOK).Send(buf.Bytes())
}

func (c *adminApiController) exportHistory(ctx *fiber.Ctx) error {
	userID, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	list, err := c.requestStore.HistoryForUser(userID, nil)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "failed to read request history")
	}
	buf, err := xlsexport.Instance.ExportRequests(list)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "failed to build history export")
	}
	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="history.xlsx"`)
	return ctx.Status(fiber.StatusOK).Send(buf.Bytes())
}

func (c *adminApiController) exportStatement(ctx *fiber.Ctx) error {
	userID, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	balance, err := c.balanceStore.GetBalance(userID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "failed to read balance")
	}
	history, err := c.requestStore.HistoryForUser(userID, nil)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "failed to read request history")
	}
	pdfFile, err := pdfexport.GenerateBalanceStatement(ptoapimodels.BalanceConvert(balance), history)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "failed to build pdf statement")
	}
	ctx.Set(fiber.HeaderContentType, "application/pdf")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="statement.pdf"`)
	return ctx.Status(fiber.StatusOK).Send(pdfFile)
}
