package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/asakaida/unicatalog/internal/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

// TestScenario_CourseLifecycle walks one subject and its courses through
// create, read, update, attribute writes, search, filter and delete.
func TestScenario_CourseLifecycle(t *testing.T) {
	testServer := SetupE2ETest(t)
	defer testServer.Teardown(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	t.Log("Step 1: Creating the subject and its courses")
	subject := testServer.MustCall(ctx, t, handlers.MethodCreateEntity, map[string]interface{}{
		"name": "Computer Science",
		"attributes": map[string]interface{}{
			"code": map[string]interface{}{"value": "CS"},
		},
	})
	subjectID := subject.Fields["id"].GetNumberValue()
	require.NotZero(t, subjectID)

	databases := testServer.MustCall(ctx, t, handlers.MethodCreateEntity, map[string]interface{}{
		"name":      "Intro to Databases",
		"parent_id": subjectID,
		"attributes": map[string]interface{}{
			"course_code": map[string]interface{}{"value": "CS101"},
			"credits":     map[string]interface{}{"value": 6, "type": "number"},
			"syllabus":    map[string]interface{}{"value": "Relational model and SQL", "type": "text"},
			"mandatory":   map[string]interface{}{"value": true, "type": "boolean"},
		},
	})
	databasesID := databases.Fields["id"].GetNumberValue()

	algorithms := testServer.MustCall(ctx, t, handlers.MethodCreateEntity, map[string]interface{}{
		"name":      "Algorithms",
		"parent_id": subjectID,
		"attributes": map[string]interface{}{
			"course_code": map[string]interface{}{"value": "CS201"},
			"credits":     map[string]interface{}{"value": 4, "type": "number"},
		},
	})
	algorithmsID := algorithms.Fields["id"].GetNumberValue()

	t.Log("Step 2: Reading back the flat record")
	record := testServer.MustCall(ctx, t, handlers.MethodGetEntity, map[string]interface{}{"id": databasesID})
	assert.Equal(t, "Intro to Databases", record.Fields["name"].GetStringValue())
	assert.Equal(t, "CS101", record.Fields["course_code"].GetStringValue())
	assert.Equal(t, 6.0, record.Fields["credits"].GetNumberValue())
	assert.Equal(t, "Relational model and SQL", record.Fields["syllabus"].GetStringValue())
	assert.True(t, record.Fields["mandatory"].GetBoolValue())
	assert.True(t, record.Fields["is_active"].GetBoolValue())
	assert.Equal(t, subjectID, record.Fields["parent_id"].GetNumberValue())

	t.Log("Step 3: Listing the subject's courses")
	children := EntityList(testServer.MustCall(ctx, t, handlers.MethodListEntities, map[string]interface{}{
		"parent_id": subjectID,
	}))
	require.Len(t, children, 2)
	// Newest first
	assert.Equal(t, algorithmsID, children[0].Fields["id"].GetNumberValue())
	assert.Equal(t, databasesID, children[1].Fields["id"].GetNumberValue())

	t.Log("Step 4: Updating fields and attributes")
	updated := testServer.MustCall(ctx, t, handlers.MethodUpdateEntity, map[string]interface{}{
		"id":        algorithmsID,
		"name":      "Algorithms and Data Structures",
		"is_active": false,
		"attributes": map[string]interface{}{
			"credits": map[string]interface{}{"value": "5"},
		},
	})
	assert.Equal(t, "Algorithms and Data Structures", updated.Fields["name"].GetStringValue())
	assert.False(t, updated.Fields["is_active"].GetBoolValue())
	// credits was declared as a number, so the string converts
	assert.Equal(t, 5.0, updated.Fields["credits"].GetNumberValue())

	active := EntityList(testServer.MustCall(ctx, t, handlers.MethodListEntities, map[string]interface{}{}))
	assert.Len(t, active, 2)
	all := EntityList(testServer.MustCall(ctx, t, handlers.MethodListEntities, map[string]interface{}{
		"include_inactive": true,
	}))
	assert.Len(t, all, 3)

	t.Log("Step 5: Setting and clearing single attributes")
	testServer.MustCall(ctx, t, handlers.MethodSetAttribute, map[string]interface{}{
		"entity_id": databasesID,
		"name":      "start_date",
		"value":     "2026-09-01",
		"type":      "date",
	})
	testServer.MustCall(ctx, t, handlers.MethodSetAttribute, map[string]interface{}{
		"entity_id": databasesID,
		"name":      "syllabus",
		"value":     nil,
	})
	record = testServer.MustCall(ctx, t, handlers.MethodGetEntity, map[string]interface{}{"id": databasesID})
	assert.Equal(t, "2026-09-01T00:00:00Z", record.Fields["start_date"].GetStringValue())
	_, hasSyllabus := record.Fields["syllabus"]
	assert.False(t, hasSyllabus)

	t.Log("Step 6: Searching and filtering")
	found := EntityList(testServer.MustCall(ctx, t, handlers.MethodSearchEntities, map[string]interface{}{
		"term": "cs1",
	}))
	require.Len(t, found, 1)
	assert.Equal(t, databasesID, found[0].Fields["id"].GetNumberValue())

	filtered := EntityList(testServer.MustCall(ctx, t, handlers.MethodFilterEntities, map[string]interface{}{
		"expression":       `has(entity.credits) && entity.credits >= 5`,
		"include_inactive": true,
	}))
	assert.Len(t, filtered, 2)

	t.Log("Step 7: Inspecting the attribute dictionary")
	attrs := testServer.MustCall(ctx, t, handlers.MethodListAttributes, map[string]interface{}{})
	names := []string{}
	for _, v := range attrs.Fields["attributes"].GetListValue().GetValues() {
		names = append(names, v.GetStructValue().Fields["name"].GetStringValue())
	}
	assert.Equal(t, []string{"code", "course_code", "credits", "mandatory", "start_date", "syllabus"}, names)

	t.Log("Step 8: Deleting a course")
	testServer.MustCall(ctx, t, handlers.MethodDeleteEntity, map[string]interface{}{"id": databasesID})
	_, err := testServer.Call(ctx, t, handlers.MethodGetEntity, map[string]interface{}{"id": databasesID})
	assert.Error(t, err)

	apiMetrics := testServer.Metrics.GetAPIMetrics()
	assert.NotZero(t, apiMetrics.RequestCounts["/"+handlers.CatalogServiceName+"/"+handlers.MethodCreateEntity])
}

// TestScenario_DetachFromParent moves a course out of its subject
func TestScenario_DetachFromParent(t *testing.T) {
	testServer := SetupE2ETest(t)
	defer testServer.Teardown(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	subject := testServer.MustCall(ctx, t, handlers.MethodCreateEntity, map[string]interface{}{"name": "Mathematics"})
	subjectID := subject.Fields["id"].GetNumberValue()

	course := testServer.MustCall(ctx, t, handlers.MethodCreateEntity, map[string]interface{}{
		"name":      "Linear Algebra",
		"parent_id": subjectID,
	})
	courseID := course.Fields["id"].GetNumberValue()

	req, err := structpb.NewStruct(map[string]interface{}{"id": courseID})
	require.NoError(t, err)
	req.Fields["parent_id"] = structpb.NewNullValue()

	updated, err := testServer.Client.Call(ctx, handlers.MethodUpdateEntity, req)
	require.NoError(t, err)
	_, isNull := updated.Fields["parent_id"].GetKind().(*structpb.Value_NullValue)
	assert.True(t, isNull)

	children := EntityList(testServer.MustCall(ctx, t, handlers.MethodListEntities, map[string]interface{}{
		"parent_id": subjectID,
	}))
	assert.Empty(t, children)
}
