package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"askdesk/internal/models/request_models"
	"askdesk/internal/models/wizard_models"
	"askdesk/internal/services"
	"askdesk/pkg/utils"
)

type InquiryController struct {
	flowService services.InquiryFlowServiceInterface
}

func NewInquiryController(flowService services.InquiryFlowServiceInterface) *InquiryController {
	return &InquiryController{
		flowService: flowService,
	}
}

// ListInquiryTypes godoc
// @Summary List inquiry types
// @Tags Inquiry
// @Produce json
// @Success 200 {array} wizard_models.InquiryTypeInfo
// @Router /inquiry-types [get]
func (ic *InquiryController) ListInquiryTypes(c *gin.Context) {
	utils.RespondSuccess(c, ic.flowService.InquiryTypes(), "Inquiry types fetched successfully")
}

// StartSession godoc
// @Summary Start an inquiry session
// @Description Start the wizard for a catalog company, or skip company selection
// @Tags Inquiry
// @Accept json
// @Produce json
// @Param request body request_models.StartSessionRequest true "Company or skip flag"
// @Success 201 {object} response_models.SessionResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 422 {object} utils.APIResponse
// @Example {json} Request Body Example:
//
//	{
//	  "company": "삼성전자",
//	  "skipCompanySelection": false
//	}
//
// @Router /sessions [post]
func (ic *InquiryController) StartSession(c *gin.Context) {
	var req request_models.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	session, err := ic.flowService.StartSession(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondWithStatus(c, http.StatusCreated, session, "Session started successfully")
}

// GetSession godoc
// @Summary Get an inquiry session
// @Tags Inquiry
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response_models.SessionResponse
// @Failure 404 {object} utils.APIResponse
// @Router /sessions/{id} [get]
func (ic *InquiryController) GetSession(c *gin.Context) {
	session, err := ic.flowService.Session(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, session, "Session fetched successfully")
}

// ExitSession godoc
// @Summary Exit the inquiry flow
// @Description Tear the session down and cancel pending generation or submission
// @Tags Inquiry
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /sessions/{id} [delete]
func (ic *InquiryController) ExitSession(c *gin.Context) {
	if err := ic.flowService.Exit(c.Request.Context(), c.Param("id")); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Session closed successfully")
}

// SelectType godoc
// @Summary Select the inquiry type
// @Tags Inquiry
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body request_models.SelectTypeRequest true "refund, account, complaint or general"
// @Success 200 {object} response_models.SessionResponse
// @Failure 400 {object} utils.APIResponse
// @Router /sessions/{id}/type [put]
func (ic *InquiryController) SelectType(c *gin.Context) {
	var req request_models.SelectTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Inquiry type is required")
		return
	}

	session, err := ic.flowService.SelectType(c.Request.Context(), c.Param("id"), req.Type)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, session, "Inquiry type selected")
}

// UpdateUserInfo godoc
// @Summary Update contact details
// @Tags Inquiry
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body request_models.UserInfoRequest true "Contact details"
// @Success 200 {object} response_models.SessionResponse
// @Router /sessions/{id}/user-info [put]
func (ic *InquiryController) UpdateUserInfo(c *gin.Context) {
	var req request_models.UserInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	session, err := ic.flowService.UpdateUserInfo(c.Request.Context(), c.Param("id"), wizard_models.UserInfo{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		OrderNumber:  req.OrderNumber,
		CompanyGuess: req.CompanyGuess,
	})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, session, "User info updated")
}

// UpdateKeywords godoc
// @Summary Update draft keywords
// @Tags Inquiry
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body request_models.KeywordsRequest true "Keywords"
// @Success 200 {object} response_models.SessionResponse
// @Router /sessions/{id}/keywords [put]
func (ic *InquiryController) UpdateKeywords(c *gin.Context) {
	var req request_models.KeywordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	session, err := ic.flowService.UpdateKeywords(c.Request.Context(), c.Param("id"), req.Keywords)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, session, "Keywords updated")
}

// EditDraft godoc
// @Summary Edit the draft text
// @Tags Inquiry
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body request_models.DraftRequest true "Draft text"
// @Success 200 {object} response_models.SessionResponse
// @Router /sessions/{id}/draft [put]
func (ic *InquiryController) EditDraft(c *gin.Context) {
	var req request_models.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	session, err := ic.flowService.EditDraft(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, session, "Draft updated")
}

// AddAttachments godoc
// @Summary Attach files
// @Description Record attachment metadata; contents are never uploaded
// @Tags Inquiry
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body request_models.AttachmentsRequest true "File metadata"
// @Success 200 {object} response_models.SessionResponse
// @Router /sessions/{id}/attachments [post]
func (ic *InquiryController) AddAttachments(c *gin.Context) {
	var req request_models.AttachmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid attachment list")
		return
	}

	files := make([]wizard_models.Attachment, 0, len(req.Files))
	for _, f := range req.Files {
		files = append(files, wizard_models.Attachment{Name: f.Name, Size: f.Size, ContentType: f.Type})
	}

	session, err := ic.flowService.AddAttachments(c.Request.Context(), c.Param("id"), files)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, session, "Attachments added")
}

// RemoveAttachment godoc
// @Summary Remove an attachment
// @Tags Inquiry
// @Produce json
// @Param id path string true "Session ID"
// @Param name path string true "File name"
// @Success 200 {object} response_models.SessionResponse
// @Router /sessions/{id}/attachments/{name} [delete]
func (ic *InquiryController) RemoveAttachment(c *gin.Context) {
	session, err := ic.flowService.RemoveAttachment(c.Request.Context(), c.Param("id"), c.Param("name"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, session, "Attachment removed")
}

// Next godoc
// @Summary Advance one step
// @Tags Inquiry
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response_models.SessionResponse
// @Failure 422 {object} utils.APIResponse
// @Router /sessions/{id}/next [post]
func (ic *InquiryController) Next(c *gin.Context) {
	session, err := ic.flowService.Next(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, session, "Moved to next step")
}

// Back godoc
// @Summary Go back one step
// @Tags Inquiry
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response_models.SessionResponse
// @Router /sessions/{id}/back [post]
func (ic *InquiryController) Back(c *gin.Context) {
	session, err := ic.flowService.Back(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, session, "Moved to previous step")
}

// Generate godoc
// @Summary Generate the draft
// @Description Start drafting from the current inputs. With wait=true the response carries the finished session.
// @Tags Inquiry
// @Produce json
// @Param id path string true "Session ID"
// @Param wait query bool false "Wait for the draft" default(false)
// @Success 200 {object} response_models.SessionResponse
// @Success 202 {object} response_models.SessionResponse
// @Failure 409 {object} utils.APIResponse
// @Router /sessions/{id}/generate [post]
func (ic *InquiryController) Generate(c *gin.Context) {
	wait, err := strconv.ParseBool(c.DefaultQuery("wait", "false"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid wait flag")
		return
	}

	sessionID := c.Param("id")
	task, session, err := ic.flowService.Generate(c.Request.Context(), sessionID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	if !wait {
		utils.RespondWithStatus(c, http.StatusAccepted, session, "Generation started")
		return
	}

	if _, err := task.Wait(c.Request.Context()); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	session, err = ic.flowService.Session(c.Request.Context(), sessionID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, session, "Draft generated")
}

// Submit godoc
// @Summary Submit the inquiry
// @Tags Inquiry
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response_models.SubmissionResponse
// @Failure 409 {object} utils.APIResponse
// @Failure 422 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Router /sessions/{id}/submit [post]
func (ic *InquiryController) Submit(c *gin.Context) {
	receipt, err := ic.flowService.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, receipt, "Inquiry submitted successfully")
}

// ListNotifications godoc
// @Summary List session notifications
// @Description Notifications stay readable for a while after the session closes
// @Tags Inquiry
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {array} wizard_models.Notification
// @Failure 404 {object} utils.APIResponse
// @Router /sessions/{id}/notifications [get]
func (ic *InquiryController) ListNotifications(c *gin.Context) {
	notifications, err := ic.flowService.Notifications(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, notifications, "Notifications fetched successfully")
}
