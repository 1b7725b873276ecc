package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelmerge/internal/domain"
	mysqlrepo "hotelmerge/internal/storage/mysql"
)

var hotelCols = []string{"id", "destination_id", "name", "description", "location", "amenities", "images", "booking_conditions"}

func newMock(t *testing.T) (*mysqlrepo.Repo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return mysqlrepo.New(db), mock
}

func TestUpsertHotel(t *testing.T) {
	repo, mock := newMock(t)
	city := "Singapore"
	h := domain.Hotel{
		ID:            "iJhz",
		DestinationID: 5432,
		Name:          "Beach Villas Singapore",
		Location:      domain.Location{City: &city},
		Amenities:     domain.Amenities{General: []string{"pool"}},
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO hotels")).
		WithArgs("iJhz", int64(5432), 3, "Beach Villas Singapore", "",
			`{"address":null,"city":"Singapore","country":null,"lat":null,"lng":null,"postal_code":null}`,
			`{"general":["pool"],"room":[]}`,
			`{"rooms":[],"site":[],"amenities":[]}`,
			`[]`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpsertHotel(context.Background(), h, 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetHotel(t *testing.T) {
	repo, mock := newMock(t)
	rows := sqlmock.NewRows(hotelCols).AddRow(
		"iJhz", int64(5432), "Beach Villas Singapore", "Surrounded by tropical gardens.",
		[]byte(`{"address":"8 Sentosa Gateway","city":null,"country":"SG","lat":1.264751,"lng":103.824006,"postal_code":null}`),
		[]byte(`{"general":["pool"],"room":["tv"]}`),
		[]byte(`{"rooms":[{"link":"https://example.com/2.jpg","description":"Double room"}],"site":[],"amenities":[]}`),
		[]byte(`["All children are welcome."]`),
	)
	mock.ExpectQuery(`FROM hotels\s+WHERE id = \?`).WithArgs("iJhz").WillReturnRows(rows)

	h, err := repo.GetHotel(context.Background(), "iJhz")
	require.NoError(t, err)
	assert.Equal(t, "SG", *h.Location.Country)
	assert.Nil(t, h.Location.City)
	assert.Equal(t, 103.824006, *h.Location.Lng)
	assert.Equal(t, []string{"tv"}, h.Amenities.Room)
	assert.Equal(t, "Double room", h.Images.Rooms[0].Description)
	assert.Equal(t, []domain.Image{}, h.Images.Site)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetHotel_NotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`FROM hotels`).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetHotel(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListHotels_FilterAndOrder(t *testing.T) {
	repo, mock := newMock(t)
	rows := sqlmock.NewRows(hotelCols).
		AddRow("SjyX", int64(5432), "InterContinental", "", []byte(`{}`), []byte(`{}`), []byte(`{}`), []byte(`[]`)).
		AddRow("iJhz", int64(5432), "Beach Villas", "", []byte(`{}`), []byte(`{}`), []byte(`{}`), []byte(`[]`))
	mock.ExpectQuery(`WHERE id IN \(\?,\?\) AND destination_id IN \(\?\)\s+ORDER BY seq, id`).
		WithArgs("SjyX", "iJhz", int64(5432)).
		WillReturnRows(rows)

	hs, err := repo.ListHotels(context.Background(), domain.Filter{IDs: []string{"SjyX", "iJhz"}, DestinationIDs: []int64{5432}})
	require.NoError(t, err)
	require.Len(t, hs, 2)
	assert.Equal(t, "SjyX", hs[0].ID)
	assert.Equal(t, []string{}, hs[1].Amenities.General)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListHotels_NoFilterAndErrors(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`FROM hotels\s+ORDER BY seq, id`).WillReturnRows(sqlmock.NewRows(hotelCols))

	hs, err := repo.ListHotels(context.Background(), domain.Filter{})
	require.NoError(t, err)
	assert.Empty(t, hs)
	assert.NotNil(t, hs)

	mock.ExpectQuery(`FROM hotels`).WillReturnError(errors.New("connection reset"))
	_, err = repo.ListHotels(context.Background(), domain.Filter{})
	assert.Error(t, err)
}

func TestListHotels_BadJSON(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`FROM hotels`).WillReturnRows(sqlmock.NewRows(hotelCols).
		AddRow("x", int64(1), "", "", []byte(`{`), []byte(`{}`), []byte(`{}`), []byte(`[]`)))

	_, err := repo.ListHotels(context.Background(), domain.Filter{})
	assert.Error(t, err)
}
