package contracts

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCaseRecordAccessors(t *testing.T) {
	onset := time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC)
	days := 4
	r := CaseRecord{
		CaseCode:          "C100",
		Region:            "NCR",
		OnsetProxy:        OnsetSpecimen,
		CaseStatus:        StatusActive,
		DateOnset:         onset,
		SpecimenToRepConf: &days,
	}

	assert.Equal(t, "C100", r.Category(ColCaseCode))
	assert.Equal(t, "NCR", r.Category(ColRegion))
	assert.Equal(t, "DateSpecimen", r.Category(ColOnsetProxy))
	assert.Equal(t, "ACTIVE", r.Category(ColCaseStatus))
	assert.Equal(t, "", r.Category(ColDateOnset))

	assert.Equal(t, onset, r.Date(ColDateOnset))
	assert.True(t, r.Date(ColDateDied).IsZero())

	n, ok := r.Days(ColSpecimenToRepConf)
	assert.True(t, ok)
	assert.Equal(t, 4, n)
	_, ok = r.Days(ColReleaseToRepConf)
	assert.False(t, ok)
}

func TestIsClosed(t *testing.T) {
	assert.True(t, IsClosed("RECOVERED"))
	assert.True(t, IsClosed("DIED"))
	assert.False(t, IsClosed("MILD"))
	assert.False(t, IsClosed(""))
}

func TestTestingRecordValue(t *testing.T) {
	r := TestingRecord{DailyUniqueIndividuals: 10, DailyPositiveIndividuals: 2, PctPositiveDaily: 0.2}

	assert.Equal(t, 10.0, r.Value(ColDailyUniqueIndividuals))
	assert.Equal(t, 2.0, r.Value(ColDailyPositiveIndividuals))
	assert.Equal(t, 0.2, r.Value(ColPctPositiveDaily))
	assert.Equal(t, 0.0, r.Value("nope"))
}

func TestErrorWrapping(t *testing.T) {
	jobErr := &JobError{Job: "summary", Err: ErrInvalidArgument}
	stageErr := &StageError{Stage: RunStagePlot, Err: fmt.Errorf("plot: %w", jobErr)}

	assert.True(t, errors.Is(stageErr, ErrInvalidArgument))

	var je *JobError
	assert.True(t, errors.As(stageErr, &je))
	assert.Equal(t, "summary", je.Job)
	assert.Equal(t, "plot stage failed: plot: job summary: invalid argument", stageErr.Error())
}
