package handlers

import (
	"genbot-ai/internal/apis/dtos"
	"genbot-ai/internal/constants"
	"genbot-ai/internal/models"
	"genbot-ai/internal/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

type BotHandler struct {
	storage  services.ChatStorageService
	resolver services.BotResolver
}

func NewBotHandler(storage services.ChatStorageService, resolver services.BotResolver) *BotHandler {
	return &BotHandler{
		storage:  storage,
		resolver: resolver,
	}
}

func (h *BotHandler) Create(c *gin.Context) {
	var req dtos.CreateBotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorMsg := err.Error()
		c.JSON(http.StatusBadRequest, dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	accountID := req.AccountID
	if accountID == 0 {
		accountID = constants.DefaultAccountID
	}
	bot := &models.Bot{
		AccountID:    accountID,
		Name:         req.Name,
		SystemPrompt: req.SystemPrompt,
	}
	if err := h.storage.CreateBot(c.Request.Context(), bot); err != nil {
		errorMsg := err.Error()
		c.JSON(http.StatusInternalServerError, dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    dtos.NewBotResponse(bot),
	})
}

func (h *BotHandler) GetByID(c *gin.Context) {
	botID, err := parseID(c)
	if err != nil {
		errorMsg := services.ErrInvalidBotID.Error()
		c.JSON(http.StatusBadRequest, dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	bot, err := h.storage.GetBot(c.Request.Context(), botID)
	if err != nil {
		errorMsg := err.Error()
		c.JSON(statusForError(err), dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    dtos.NewBotResponse(bot),
	})
}

func (h *BotHandler) Update(c *gin.Context) {
	botID, err := parseID(c)
	if err != nil {
		errorMsg := services.ErrInvalidBotID.Error()
		c.JSON(http.StatusBadRequest, dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	var req dtos.UpdateBotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorMsg := err.Error()
		c.JSON(http.StatusBadRequest, dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	bot, err := h.storage.GetBot(c.Request.Context(), botID)
	if err != nil {
		errorMsg := err.Error()
		c.JSON(statusForError(err), dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	if req.Name != nil {
		bot.Name = *req.Name
	}
	if req.SystemPrompt != nil {
		bot.SystemPrompt = req.SystemPrompt
	}
	if err := h.resolver.UpdateBot(c.Request.Context(), bot); err != nil {
		errorMsg := err.Error()
		c.JSON(statusForError(err), dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    dtos.NewBotResponse(bot),
	})
}

func (h *BotHandler) Delete(c *gin.Context) {
	botID, err := parseID(c)
	if err != nil {
		errorMsg := services.ErrInvalidBotID.Error()
		c.JSON(http.StatusBadRequest, dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	if err := h.storage.DeleteBot(c.Request.Context(), botID); err != nil {
		errorMsg := err.Error()
		c.JSON(statusForError(err), dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    "Bot deleted",
	})
}
