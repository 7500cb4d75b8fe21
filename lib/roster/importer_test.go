package roster

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	dbmodels "pto-bot-backend/models/db"
)

type recordingBalanceStore struct {
	upserts []dbmodels.LeaveBalance
}

func (s *recordingBalanceStore) GetBalance(userID string) (dbmodels.LeaveBalance, error) {
	return dbmodels.LeaveBalance{UserID: userID}, nil
}

func (s *recordingBalanceStore) IncrementTaken(userID string, days int) (int, int, error) {
	return 0, days, nil
}

func (s *recordingBalanceStore) SetAllowance(rec dbmodels.LeaveBalance) error {
	s.upserts = append(s.upserts, rec)
	return nil
}

func (s *recordingBalanceStore) List() ([]dbmodels.LeaveBalance, error) {
	return s.upserts, nil
}

func rosterFile(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	header := []interface{}{"User ID", "User Name", "Manager ID", "Manager Name", "Allowance"}
	require.Nil(t, f.SetSheetRow(sheet, "A1", &header))
	for idx, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, idx+2)
		require.Nil(t, err)
		require.Nil(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.Nil(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestImportXLSX(t *testing.T) {
	t.Run(`valid roster upserts every row`, func(t *testing.T) {
		store := &recordingBalanceStore{}
		provider := NewProvider(store)

		file := rosterFile(t, [][]interface{}{
			{"U1", "Alice", "UMANAGER", "Carol", 25},
			{"U2", "Bob", "UMANAGER", "Carol", 28},
		})

		result, err := provider.ImportXLSX(file)
		require.Nil(t, err)
		require.Equal(t, 2, result.Imported)
		require.Len(t, result.Skipped, 0)
		require.Len(t, store.upserts, 2)
		require.Equal(t, dbmodels.LeaveBalance{
			UserID:      "U1",
			UserName:    "Alice",
			ManagerID:   "UMANAGER",
			ManagerName: "Carol",
			Allowance:   25,
		}, store.upserts[0])
	})

	t.Run(`invalid rows are skipped, not fatal`, func(t *testing.T) {
		store := &recordingBalanceStore{}
		provider := NewProvider(store)

		file := rosterFile(t, [][]interface{}{
			{"U1", "Alice", "UMANAGER", "Carol", 25},
			{"", "No ID", "UMANAGER", "Carol", 25},
			{"U3", "Bad Allowance", "UMANAGER", "Carol", "plenty"},
		})

		result, err := provider.ImportXLSX(file)
		require.Nil(t, err)
		require.Equal(t, 1, result.Imported)
		require.Len(t, result.Skipped, 2)
	})

	t.Run(`not a spreadsheet`, func(t *testing.T) {
		store := &recordingBalanceStore{}
		provider := NewProvider(store)

		_, err := provider.ImportXLSX(bytes.NewReader([]byte("user,name\n")))
		require.NotNil(t, err)
	})
}
