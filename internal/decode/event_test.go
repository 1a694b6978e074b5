package decode

import (
	"errors"
	"testing"

	"github.com/hejijunhao/fwdigest/internal/catalog"
	"github.com/hejijunhao/fwdigest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCatalog = catalog.New(map[int]string{2020: "Config Change", 4101: "Session Started"})

func eventMsg(action string) string {
	return action + " 10.0.0.1 (0|box|Firewall|x|Admin|2020|Configuration changed|a|b|admin updated rule set|extra)"
}

func TestEvent_Insert(t *testing.T) {
	raw := model.RawEntry{Message: eventMsg("Insert Event from"), Time: "2026-10-14 05:00:00", Timezone: "+00:00"}

	rec, err := Event(raw, testCatalog)
	require.NoError(t, err)
	assert.Equal(t, model.EventRecord{
		Time:        "2026-10-14 05:00:00",
		Zone:        "+00:00",
		Action:      model.ActionInsert,
		LayerName:   "Firewall",
		ClassName:   "Admin",
		EventID:     "2020",
		EventName:   "Config Change",
		Description: "Configuration changed",
		Message:     "admin updated rule set",
	}, rec)
}

func TestEvent_NonInsertOmitsMessage(t *testing.T) {
	for action, want := range map[string]model.Action{
		"Drop Event from": model.ActionDrop,
		"Get ACK from":    model.ActionAck,
		"Send Event to":   model.ActionSend,
	} {
		rec, err := Event(model.RawEntry{Message: eventMsg(action)}, testCatalog)
		require.NoError(t, err, action)
		assert.Equal(t, want, rec.Action, action)
		assert.Equal(t, "", rec.Message, action)
		assert.Equal(t, "Firewall", rec.LayerName, action)
	}
}

func TestEvent_PriorityInsertOverSend(t *testing.T) {
	msg := "Send Event relay: Insert Event from 10.0.0.1 (0|box|Firewall|x|Admin|2020|desc|a|b|payload)"
	rec, err := Event(model.RawEntry{Message: msg}, testCatalog)
	require.NoError(t, err)
	assert.Equal(t, model.ActionInsert, rec.Action)
	assert.Equal(t, "payload", rec.Message)
}

func TestEvent_NoActionIsSkipped(t *testing.T) {
	_, err := Event(model.RawEntry{Message: "Heartbeat (0|1|2|3|4|5|6|7|8|9)"}, testCatalog)
	assert.True(t, errors.Is(err, ErrNoAction))
}

func TestEvent_NoPayload(t *testing.T) {
	_, err := Event(model.RawEntry{Message: "Insert Event from 10.0.0.1 without payload"}, testCatalog)
	assert.True(t, errors.Is(err, ErrNoPayload))
	var de *DecodeError
	assert.ErrorAs(t, err, &de)
}

func TestEvent_ShortPayloadYieldsEmptyFields(t *testing.T) {
	rec, err := Event(model.RawEntry{Message: "Insert Event from x (a|b|Layer)"}, testCatalog)
	require.NoError(t, err)
	assert.Equal(t, "Layer", rec.LayerName)
	assert.Equal(t, "", rec.ClassName)
	assert.Equal(t, "", rec.Description)
	assert.Equal(t, "", rec.Message)
	assert.Equal(t, catalog.UnknownName, rec.EventName)
}

func TestEvent_UnknownCatalogID(t *testing.T) {
	msg := "Drop Event from x (0|box|Firewall|x|Admin|7777|desc)"
	rec, err := Event(model.RawEntry{Message: msg}, testCatalog)
	require.NoError(t, err)
	assert.Equal(t, "7777", rec.EventID)
	assert.Equal(t, catalog.UnknownName, rec.EventName)
}

func TestEvent_UsesLastGroup(t *testing.T) {
	msg := "Get ACK from relay (ignored) (0|box|VPN|x|Tunnel|4101|up)"
	rec, err := Event(model.RawEntry{Message: msg}, testCatalog)
	require.NoError(t, err)
	assert.Equal(t, "VPN", rec.LayerName)
	assert.Equal(t, "Session Started", rec.EventName)
}

func TestEvent_UnbalancedParenInPayload(t *testing.T) {
	msg := "Insert Event from 10.0.0.1 (0|box|Firewall|x|Admin|2020|step 1) done|a|b|msg)"
	rec, err := Event(model.RawEntry{Message: msg}, testCatalog)
	require.NoError(t, err)
	assert.Equal(t, model.ActionInsert, rec.Action)
	assert.Equal(t, "Firewall", rec.LayerName)
	assert.Equal(t, "Admin", rec.ClassName)
	assert.Equal(t, "2020", rec.EventID)
	assert.Equal(t, "step 1) done", rec.Description)
	assert.Equal(t, "msg", rec.Message)
}
