// Package basesvc - Test serialize UpdateData thành update document.
package basesvc

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestUpdateData_IsZero(t *testing.T) {
	empty := &UpdateData{}
	if !empty.IsZero() {
		t.Error("UpdateData rỗng phải là zero")
	}

	withSet := &UpdateData{Set: map[string]interface{}{"name": "x"}}
	if withSet.IsZero() {
		t.Error("UpdateData có $set không được là zero")
	}

	withPull := &UpdateData{Pull: map[string]interface{}{"likes": "user-1"}}
	if withPull.IsZero() {
		t.Error("UpdateData có $pull không được là zero")
	}
}

func TestUpdateData_SerializeDungOperator(t *testing.T) {
	u := &UpdateData{
		Set:      map[string]interface{}{"mediaStored": true},
		AddToSet: map[string]interface{}{"likes": "user-1"},
	}

	raw, err := bson.Marshal(u)
	if err != nil {
		t.Fatalf("marshal UpdateData lỗi: %v", err)
	}

	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}

	if _, ok := doc["$set"]; !ok {
		t.Error("document phải chứa operator $set")
	}
	if _, ok := doc["$addToSet"]; !ok {
		t.Error("document phải chứa operator $addToSet")
	}
	if _, ok := doc["$pull"]; ok {
		t.Error("operator rỗng không được xuất hiện trong document (omitempty)")
	}
}
