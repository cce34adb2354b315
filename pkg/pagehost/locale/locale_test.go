package locale

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/BrandonKowalski/pagehost/pkg/pagehost/lifecycle"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/router"
)

func TestDescribeEnglish(t *testing.T) {
	l, err := New("en-US")
	require.NoError(t, err)
	assert.Equal(t, language.English, l.Tag())

	assert.Equal(t, "Done", l.Describe(router.Succeeded()))
	assert.Equal(t, "There is nowhere to go", l.Describe(router.Failed(router.ErrorKindNoHistory, nil)))
	assert.Equal(t, "Restoring where you left off", l.DescribeStart(lifecycle.ResumeFromTerminate))
}

func TestDescribeGerman(t *testing.T) {
	l, err := New("de-AT", "en")
	require.NoError(t, err)
	assert.Equal(t, language.German, l.Tag())

	assert.Equal(t, "Navigation abgebrochen", l.Describe(router.Failed(router.ErrorKindAborted, errors.New("guard"))))
	assert.Equal(t, "1 Seite zurück", l.HistoryDepth(1))
	assert.Equal(t, "3 Seiten zurück", l.HistoryDepth(3))
}

func TestEveryErrorKindHasAMessage(t *testing.T) {
	l, err := New("en")
	require.NoError(t, err)
	for kind := router.ErrorKindNone; kind <= router.ErrorKindClosed; kind++ {
		res := router.Result{Success: kind == router.ErrorKindNone, Kind: kind}
		assert.NotEqual(t, "result_"+kind.String(), l.Describe(res), kind.String())
	}
}

func TestUnknownLanguageFallsBackToEnglish(t *testing.T) {
	l, err := New("fr")
	require.NoError(t, err)
	assert.Equal(t, language.English, l.Tag())
	assert.Equal(t, "Starting", l.DescribeStart(lifecycle.Launch))
}

func TestMalformedTag(t *testing.T) {
	_, err := New("not a tag!")
	assert.Error(t, err)
}
