//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"hotel-booking/internal/domain/guest"
	"hotel-booking/internal/handler/api"
	resdto "hotel-booking/internal/handler/dto/response"
	"hotel-booking/internal/pkg/errs"
	"hotel-booking/internal/usecase/commands"
	"hotel-booking/internal/usecase/queries"
	"hotel-booking/tests/common/httptest"
	commandsmock "hotel-booking/tests/mock/commands"
	queriesmock "hotel-booking/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type InventoryHandlerTestSuite struct {
	suite.Suite
	router        *gin.Engine
	mockCtrl      *gomock.Controller
	mockCommands  *commandsmock.MockInventoryCommands
	mockQueries   *queriesmock.MockInventoryQueries
	mockGuestsQry *queriesmock.MockGuestQueries
}

func (s *InventoryHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockInventoryCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockInventoryQueries(s.mockCtrl)
	s.mockGuestsQry = queriesmock.NewMockGuestQueries(s.mockCtrl)

	inv := api.NewInventoryHandler(s.mockCommands, s.mockQueries)
	guests := api.NewGuestHandler(s.mockGuestsQry)
	s.router.GET("/inventory", inv.List)
	s.router.PUT("/inventory/:roomType", inv.Update)
	s.router.GET("/guests", guests.List)
	s.router.GET("/guests/:email", guests.Get)
}

func (s *InventoryHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestInventoryHandlerSuite(t *testing.T) {
	suite.Run(t, new(InventoryHandlerTestSuite))
}

func (s *InventoryHandlerTestSuite) TestList() {
	now := time.Date(2026, 11, 1, 10, 0, 0, 0, time.UTC)
	s.mockQueries.EXPECT().List(gomock.Any()).Return([]*queries.InventoryView{
		{RoomType: "standard", Available: 10, UpdatedAt: now},
		{RoomType: "deluxe", Available: 0, UpdatedAt: now},
	}, nil).Times(1)

	rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/inventory", nil, "")

	var response resdto.InventoryResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
	s.Len(response.Inventory, 2)
	s.Equal(0, response.Inventory[1].Available)
}

func (s *InventoryHandlerTestSuite) TestUpdate() {
	s.Run("success", func() {
		s.mockCommands.EXPECT().SetAvailable(gomock.Any(), "suite", 0).Return(nil).Times(1)
		s.mockQueries.EXPECT().Get(gomock.Any(), "suite").Return(&queries.InventoryView{RoomType: "suite", Available: 0}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, "/inventory/suite", map[string]any{"available": 0}, "")

		var response queries.InventoryView
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal("suite", response.RoomType)
	})

	s.Run("error: validation", func() {
		for _, body := range []map[string]any{{}, {"available": -1}, {"available": "ten"}} {
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, "/inventory/suite", body, "")
			httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
		}
	})

	s.Run("error: unknown room type", func() {
		s.mockCommands.EXPECT().SetAvailable(gomock.Any(), "attic", 3).
			Return(errs.Mark(errors.New("unknown room type"), commands.ErrUnknownRoomType)).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, "/inventory/attic", map[string]any{"available": 3}, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Unknown room type")
	})
}

func (s *InventoryHandlerTestSuite) TestGuests() {
	s.Run("list honors limit", func() {
		s.mockGuestsQry.EXPECT().List(gomock.Any(), 5).Return(nil, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/guests?limit=5", nil, "")
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"guests":[]}`, rec.Body.String())
	})

	s.Run("get maps errors", func() {
		testCases := []struct {
			err    error
			status int
		}{
			{queries.ErrGuestNotFound, http.StatusNotFound},
			{guest.ErrInvalidEmail, http.StatusBadRequest},
			{errs.Wrap(errors.New("conn reset"), "failed"), http.StatusInternalServerError},
		}
		for _, tc := range testCases {
			s.mockGuestsQry.EXPECT().Get(gomock.Any(), "guest@example.com").Return(nil, tc.err).Times(1)
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/guests/guest@example.com", nil, "")
			httptest.AssertErrorResponse(s.T(), rec, tc.status, "")
		}
	})
}
