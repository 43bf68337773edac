package main

import (
	"collabSheet/contracts"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ApiController struct {
	Coordinator   contracts.SyncCoordinator
	canonicalizer *Canonicalizer
	grid          GridConfig
}

type CellEndpointParams struct {
	CellId string `uri:"cell_id" binding:"required"`
}

type SetCellRequest struct {
	Value *string `json:"value" binding:"required"`
}

type SetCellResponse struct {
	CellId   string `json:"cellId"`
	RawInput string `json:"rawInput"`
}

type CellResponse struct {
	CellId string `json:"cellId"`
	contracts.CellData
	DisplayValue string `json:"displayValue"`
	EditValue    string `json:"editValue"`
}

type SheetResponse struct {
	Columns []ColumnDef `json:"columns"`
	Rows    []RowData   `json:"rows"`
}

var InvalidCellIdError = errors.New("cell id should be column letters followed by a row number")

func NewApiController(coordinator contracts.SyncCoordinator, canonicalizer *Canonicalizer, grid GridConfig) *ApiController {
	return &ApiController{
		Coordinator:   coordinator,
		canonicalizer: canonicalizer,
		grid:          grid,
	}
}

func (api *ApiController) GetCellAction(c *gin.Context) {
	params := CellEndpointParams{}

	err := c.ShouldBindUri(&params)
	if err == nil && !api.canonicalizer.IsCellAddress(params.CellId) {
		err = InvalidCellIdError
	}

	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	cellId := api.canonicalizer.Canonicalize(params.CellId)
	cell, ok := api.Coordinator.Cell(cellId)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": contracts.CellNotFoundError.Error()})
		return
	}

	c.JSON(http.StatusOK, CellResponse{
		CellId:       cellId,
		CellData:     cell,
		DisplayValue: cell.ComputedValue.String(),
		EditValue:    EditValue(cell),
	})
}

func (api *ApiController) SetCellAction(c *gin.Context) {
	params := CellEndpointParams{}
	request := SetCellRequest{}

	err := c.ShouldBindUri(&params)
	if err == nil && !api.canonicalizer.IsCellAddress(params.CellId) {
		err = InvalidCellIdError
	}
	if err == nil {
		err = c.ShouldBindJSON(&request)
	}

	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	cellId := api.canonicalizer.Canonicalize(params.CellId)
	if err = api.Coordinator.Edit(c.Request.Context(), cellId, *request.Value); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, SetCellResponse{CellId: cellId, RawInput: *request.Value})
}

func (api *ApiController) GetSheetAction(c *gin.Context) {
	state := api.Coordinator.Snapshot()

	c.JSON(http.StatusOK, SheetResponse{
		Columns: BuildColumnDefs(api.grid),
		Rows:    BuildRowData(api.grid, state),
	})
}

func (api *ApiController) GetStateAction(c *gin.Context) {
	c.JSON(http.StatusOK, api.Coordinator.Snapshot())
}
