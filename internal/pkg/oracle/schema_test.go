package oracle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oracle "github.com/aemery/gambit/internal/pkg/oracle"
)

func testTransition() oracle.Transition {
	return oracle.Transition{
		GameID:   42,
		PriorFEN: "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		NewFEN:   "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		Outcome:  oracle.InProgress,
	}
}

func TestParseSchema(t *testing.T) {
	t.Parallel()

	for v, expected := range map[int]oracle.Schema{
		1: oracle.SchemaV1,
		2: oracle.SchemaV2,
		3: oracle.SchemaV3,
	} {
		schema, err := oracle.ParseSchema(v)
		require.NoError(t, err)
		assert.Equal(t, expected, schema)
	}

	_, err := oracle.ParseSchema(4)
	assert.ErrorIs(t, err, oracle.ErrUnknownSchema)
}

func TestMessageIsDeterministic(t *testing.T) {
	t.Parallel()

	for _, schema := range []oracle.Schema{oracle.SchemaV1, oracle.SchemaV2, oracle.SchemaV3} {
		first, err := schema.Message(testTransition())
		require.NoError(t, err)

		second, err := schema.Message(testTransition())
		require.NoError(t, err)

		assert.Equal(t, first, second)
	}
}

func TestMessagesDifferAcrossSchemas(t *testing.T) {
	t.Parallel()

	transition := testTransition()

	v1, err := oracle.SchemaV1.Message(transition)
	require.NoError(t, err)

	v2, err := oracle.SchemaV2.Message(transition)
	require.NoError(t, err)

	v3, err := oracle.SchemaV3.Message(transition)
	require.NoError(t, err)

	assert.NotEqual(t, v1, v2)
	assert.NotEqual(t, v1, v3)
	assert.NotEqual(t, v2, v3)

	assert.Len(t, v2, 32)
	assert.Len(t, v3, 32)
}

func TestV1SignsRawText(t *testing.T) {
	t.Parallel()

	transition := testTransition()
	transition.Outcome = oracle.BlackWin

	message, err := oracle.SchemaV1.Message(transition)
	require.NoError(t, err)

	assert.Equal(t, []byte(transition.NewFEN+"|0-1"), message)
}

func TestV3IncludesPriorPosition(t *testing.T) {
	t.Parallel()

	// Two different openings transposing into the same resulting position:
	// indistinguishable under v2, distinct under v3.
	first := testTransition()

	second := testTransition()
	second.PriorFEN = "rnbqkbnr/pppppppp/8/8/8/4P3/PPPP1PPP/RNBQKBNR w KQkq - 0 1"

	v2First, err := oracle.SchemaV2.Message(first)
	require.NoError(t, err)

	v2Second, err := oracle.SchemaV2.Message(second)
	require.NoError(t, err)

	assert.Equal(t, v2First, v2Second)

	v3First, err := oracle.SchemaV3.Message(first)
	require.NoError(t, err)

	v3Second, err := oracle.SchemaV3.Message(second)
	require.NoError(t, err)

	assert.NotEqual(t, v3First, v3Second)
}

func TestV3PinsFieldBoundaries(t *testing.T) {
	t.Parallel()

	// Shifting a byte between adjacent string fields must change the digest.
	first := testTransition()
	first.PriorFEN = "ab"
	first.NewFEN = "c"

	second := testTransition()
	second.PriorFEN = "a"
	second.NewFEN = "bc"

	v3First, err := oracle.SchemaV3.Message(first)
	require.NoError(t, err)

	v3Second, err := oracle.SchemaV3.Message(second)
	require.NoError(t, err)

	assert.NotEqual(t, v3First, v3Second)
}

func TestMessageDependsOnEveryField(t *testing.T) {
	t.Parallel()

	base, err := oracle.SchemaV3.Message(testTransition())
	require.NoError(t, err)

	mutated := testTransition()
	mutated.GameID = 43
	byGameID, err := oracle.SchemaV3.Message(mutated)
	require.NoError(t, err)
	assert.NotEqual(t, base, byGameID)

	mutated = testTransition()
	mutated.NewFEN += " "
	byNewFEN, err := oracle.SchemaV3.Message(mutated)
	require.NoError(t, err)
	assert.NotEqual(t, base, byNewFEN)

	mutated = testTransition()
	mutated.Outcome = oracle.Draw
	byOutcome, err := oracle.SchemaV3.Message(mutated)
	require.NoError(t, err)
	assert.NotEqual(t, base, byOutcome)
}

func TestMessageUnknownSchema(t *testing.T) {
	t.Parallel()

	_, err := oracle.Schema(9).Message(testTransition())

	assert.ErrorIs(t, err, oracle.ErrUnknownSchema)
}

func TestOutcomeFromResultIsTotal(t *testing.T) {
	t.Parallel()

	for result, expected := range map[string]oracle.Outcome{
		"":        oracle.InProgress,
		"1-0":     oracle.WhiteWin,
		"0-1":     oracle.BlackWin,
		"1/2-1/2": oracle.Draw,
	} {
		outcome, err := oracle.OutcomeFromResult(result)
		require.NoError(t, err)

		assert.Equal(t, expected, outcome)
		assert.Equal(t, result, outcome.Result())
		assert.Equal(t, result != "", outcome.GameOver())
	}
}

func TestOutcomeFromResultRejectsUnknownStrings(t *testing.T) {
	t.Parallel()

	for _, result := range []string{"2-0", "*", "1/2", "draw"} {
		_, err := oracle.OutcomeFromResult(result)

		assert.ErrorIs(t, err, oracle.ErrUnknownResult)
	}
}
