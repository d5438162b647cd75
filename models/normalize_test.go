package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shanghai(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)
	return loc
}

func TestLocalizeTimestampAppliesUTCOffsetOnce(t *testing.T) {
	loc := shanghai(t)

	// Naive backend value is UTC; Shanghai is UTC+8.
	got, err := localizeTimestamp("2024-01-15T08:00:00", loc)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15 16:00", got)

	// Microsecond precision is accepted and truncated by the display layout.
	got, err = localizeTimestamp("2024-01-15T08:00:00.123456", loc)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15 16:00", got)
}

func TestLocalizeTimestampHonorsExplicitZone(t *testing.T) {
	got, err := localizeTimestamp("2024-01-15T08:00:00Z", shanghai(t))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15 16:00", got)
}

func TestLocalizeTimestampPassesDatesThrough(t *testing.T) {
	// Shifting a bare date by the display offset could move it to the
	// previous or next day.
	got, err := localizeTimestamp("2024-01-15", shanghai(t))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", got)
}

func TestLocalizeTimestampEmptyAndInvalid(t *testing.T) {
	got, err := localizeTimestamp("", shanghai(t))
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = localizeTimestamp("yesterday", shanghai(t))
	assert.Error(t, err)
}

func TestNormalizeContractDefaults(t *testing.T) {
	raw := RawContract{
		ID:         7,
		Name:       "采购协议",
		UploadDate: "2024-01-15T08:00:00",
		Status:     ContractPending,
	}

	c, err := NormalizeContract(raw, shanghai(t))
	require.NoError(t, err)

	assert.Equal(t, "7", c.RecordID())
	assert.Equal(t, "2024-01-15 16:00", c.UploadDate)
	assert.Zero(t, c.Risks.Total(), "missing risk_summary defaults to zero counts")
	assert.NotNil(t, c.Results)
	assert.Empty(t, c.Results)
}

func TestNormalizeContractRejectsBadTimestamp(t *testing.T) {
	_, err := NormalizeContract(RawContract{ID: 1, UploadDate: "not-a-date"}, time.UTC)
	require.Error(t, err)

	var ne *NormalizeError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "contract", ne.Entity)
}

func TestNormalizeRiskSplitsCompositeID(t *testing.T) {
	r, err := NormalizeRisk(RawRisk{ID: "12_3", Title: "违约金比例过高"})
	require.NoError(t, err)

	assert.Equal(t, "12_3", r.RecordID())
	assert.Equal(t, 12, r.ContractID)
	assert.Equal(t, 3, r.OriginalID)
	assert.Equal(t, RiskPending, r.Status, "missing status defaults to pending")
}

func TestNormalizeRiskPrefersExplicitIDs(t *testing.T) {
	r, err := NormalizeRisk(RawRisk{ID: "12_3", ContractID: 12, OriginalID: 3, Status: RiskResolved})
	require.NoError(t, err)
	assert.Equal(t, 12, r.ContractID)
	assert.Equal(t, 3, r.OriginalID)
	assert.Equal(t, RiskResolved, r.Status)
}

func TestNormalizeRiskRejectsBadComposite(t *testing.T) {
	_, err := NormalizeRisk(RawRisk{ID: "a_b"})
	require.Error(t, err)

	var ne *NormalizeError
	assert.ErrorAs(t, err, &ne)
}

func TestNormalizeMemberDefaultsStatus(t *testing.T) {
	m, err := NormalizeMember(Member{ID: 1, Name: "王芳"})
	require.NoError(t, err)
	assert.Equal(t, MemberPending, m.Status)

	m, err = NormalizeMember(Member{ID: 2, Status: MemberActive})
	require.NoError(t, err)
	assert.Equal(t, MemberActive, m.Status)
}

func TestNormalizeArchiveItemDefaultsTags(t *testing.T) {
	item, err := NormalizeArchiveItem(RawArchiveItem{
		ID:   5,
		Name: "保密协议",
		Date: "2024-02-01T00:30:00",
	}, shanghai(t))
	require.NoError(t, err)

	assert.Equal(t, "2024-02-01 08:30", item.Date)
	assert.NotNil(t, item.Tags)
	assert.Empty(t, item.Tags)
	assert.False(t, item.HasTag("已审查"))
}
