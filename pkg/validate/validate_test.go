package validate

import (
	"errors"
	"testing"

	"github.com/cuemby/graphstore/pkg/gstypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateNodeRecordAcceptsInlineLabels(t *testing.T) {
	n := &gstypes.Node{ID: 1, InUse: true}
	n.Labels.SetInlineLabels([]int32{0, 3, 7})

	assert.NoError(t, ValidateNodeRecord(n))
}

func TestValidateNodeRecordAcceptsDynamicLabels(t *testing.T) {
	n := &gstypes.Node{ID: 2, InUse: true}
	n.Labels.Inline = false
	n.Labels.DynamicRecordID = 5

	assert.NoError(t, ValidateNodeRecord(n))
}

func TestValidateNodeRecordRejectsInlineWithDynamicPointer(t *testing.T) {
	n := &gstypes.Node{ID: 3, InUse: true}
	n.Labels.SetInlineLabels([]int32{1})
	n.Labels.DynamicRecordID = 9

	err := ValidateNodeRecord(n)
	require.Error(t, err)

	var ire *InvalidRecordError
	require.True(t, errors.As(err, &ire))
	assert.Equal(t, "node", ire.Kind)
	assert.Equal(t, int64(3), ire.ID)
}

func TestValidateNodeRecordRejectsNonInlineWithNoDynamicRecord(t *testing.T) {
	n := &gstypes.Node{ID: 4, InUse: true}
	n.Labels.Inline = false
	n.Labels.DynamicRecordID = gstypes.NoID

	err := ValidateNodeRecord(n)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no dynamic record id")
}

func TestValidateSchemaRuleAcceptsWellFormedIndex(t *testing.T) {
	r := &gstypes.SchemaRuleRecord{
		ID:            1,
		Kind:          gstypes.SchemaRuleIndex,
		LabelID:       2,
		PropertyKeyID: 3,
		DynamicRecords: []*gstypes.DynamicRecord{
			{ID: 10, InUse: true, Type: gstypes.DynamicSchema, Next: gstypes.NoID},
		},
	}

	assert.NoError(t, ValidateSchemaRule(r))
}

func TestValidateSchemaRuleRejectsUnknownKind(t *testing.T) {
	r := &gstypes.SchemaRuleRecord{ID: 2, Kind: gstypes.SchemaRuleKind(99), LabelID: 1, PropertyKeyID: 1}

	err := ValidateSchemaRule(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown rule kind")
}

func TestValidateSchemaRuleRejectsMissingLabelToken(t *testing.T) {
	r := &gstypes.SchemaRuleRecord{ID: 3, Kind: gstypes.SchemaRuleIndex, LabelID: gstypes.NoToken, PropertyKeyID: 1}

	err := ValidateSchemaRule(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "label token")
}

func TestValidateSchemaRuleRejectsMissingPropertyKeyToken(t *testing.T) {
	r := &gstypes.SchemaRuleRecord{ID: 4, Kind: gstypes.SchemaRuleUniquenessConstraint, LabelID: 1, PropertyKeyID: gstypes.NoToken}

	err := ValidateSchemaRule(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "property key token")
}

func TestValidateSchemaRuleRejectsNotInUseDynamicRecord(t *testing.T) {
	r := &gstypes.SchemaRuleRecord{
		ID:            5,
		Kind:          gstypes.SchemaRuleIndex,
		LabelID:       1,
		PropertyKeyID: 1,
		DynamicRecords: []*gstypes.DynamicRecord{
			{ID: 11, InUse: false, Type: gstypes.DynamicSchema},
		},
	}

	err := ValidateSchemaRule(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in use")
}

type fakeConstraintChecker struct {
	violates bool
	err      error
}

func (f fakeConstraintChecker) ViolatesStartKnowledge(int64) (bool, error) {
	return f.violates, f.err
}

func TestValidateTransactionStartKnowledgePassesWhenUnviolated(t *testing.T) {
	err := ValidateTransactionStartKnowledge(42, fakeConstraintChecker{violates: false})
	assert.NoError(t, err)
}

func TestValidateTransactionStartKnowledgeFailsWhenViolated(t *testing.T) {
	err := ValidateTransactionStartKnowledge(42, fakeConstraintChecker{violates: true})
	require.Error(t, err)

	var ire *InvalidRecordError
	require.True(t, errors.As(err, &ire))
	assert.Equal(t, int64(42), ire.ID)
}

func TestValidateTransactionStartKnowledgePropagatesCheckerError(t *testing.T) {
	boom := errors.New("boom")
	err := ValidateTransactionStartKnowledge(1, fakeConstraintChecker{err: boom})
	assert.Same(t, boom, err)
}

func TestNoConstraintsNeverViolates(t *testing.T) {
	violated, err := NoConstraints{}.ViolatesStartKnowledge(1000)
	require.NoError(t, err)
	assert.False(t, violated)
}
