package imagevae

import (
	"reflect"
	"testing"

	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/serializer"
)

func TestModelSerialize(t *testing.T) {
	model := NewModel(anyvec32.CurrentCreator(), 11, 6, 3)
	data, err := serializer.SerializeWithType(model)
	if err != nil {
		t.Fatal(err)
	}
	newObj, err := serializer.DeserializeWithType(data)
	if err != nil {
		t.Fatal(err)
	}
	newModel, ok := newObj.(*Model)
	if !ok {
		t.Fatalf("unexpected type: %T", newObj)
	}
	if !reflect.DeepEqual(model, newModel) {
		t.Error("models not equal after round trip")
	}
	if newModel.InputSize != 11 || newModel.HiddenSize != 6 || newModel.LatentSize != 3 {
		t.Errorf("bad dimensions: %d, %d, %d", newModel.InputSize,
			newModel.HiddenSize, newModel.LatentSize)
	}
}
