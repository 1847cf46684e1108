package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"airsense/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	inner := InvalidInput("bad column")
	err := Wrap(inner, "pipeline failed")
	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.Equal(t, "pipeline failed: bad column", err.Error())

	assert.Equal(t, CodeInternalError, GetCode(Wrap(fmt.Errorf("boom"), "x")))
	assert.Nil(t, Wrap(nil, "x"))
	assert.Nil(t, Wrapf(nil, "x %d", 1))
}

func TestGetCodeThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", EmptyResult("no rows"))
	assert.Equal(t, CodeEmptyResult, GetCode(err))
	assert.True(t, IsAppError(err))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
}

func TestDomainSentinels(t *testing.T) {
	assert.ErrorIs(t, AmbiguousSchema(true, false), core.ErrAmbiguousSchema)
	assert.ErrorIs(t, EmptyResult("none"), core.ErrEmptyResult)

	cause := fmt.Errorf("%w: samples a, b", core.ErrUnparsableTimeEncoding)
	err := UnparsableTimeEncoding("_time", cause)
	assert.ErrorIs(t, err, core.ErrUnparsableTimeEncoding)
	assert.Contains(t, err.Error(), "samples a, b")
}

func TestAmbiguousSchemaMessage(t *testing.T) {
	assert.Contains(t, AmbiguousSchema(true, true).Error(), "time and value columns")
	assert.Contains(t, AmbiguousSchema(false, true).Error(), "value column")
	assert.Contains(t, AmbiguousSchema(true, false).Error(), "time column")
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeEmptyResult, fmt.Errorf("nothing"))
	assert.Equal(t, CodeEmptyResult, GetCode(err))
	assert.Nil(t, WithCode(CodeEmptyResult, nil))
}
