package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"taskboard/app/models"
	"taskboard/app/query"
)

// Neo4jStore persists tasks as (:Task) nodes with their subtasks as
// (:Subtask) nodes under [:HAS_SUBTASK]; the idx property keeps subtask
// order. Timestamps and due dates are stored as epoch milliseconds so the
// query plan can ORDER BY plain property comparisons.
type Neo4jStore struct {
	driver neo4j.DriverWithContext
}

// NewNeo4jStore creates a store backed by the given driver.
func NewNeo4jStore(driver neo4j.DriverWithContext) *Neo4jStore {
	return &Neo4jStore{driver: driver}
}

const taskReturn = "RETURN t.id, t.title, t.completed, t.dueAt, t.tags, t.createdAt, t.updatedAt, subtasks"

const collectSubtasks = "OPTIONAL MATCH (t)-[:HAS_SUBTASK]->(s:Subtask) " +
	"WITH t, s ORDER BY s.idx " +
	"WITH t, collect(s {.id, .title, .completed}) AS subtasks "

func (n *Neo4jStore) List(ctx context.Context, spec query.Spec) ([]models.Task, error) {
	plan := query.Resolve(spec)

	cypher := "MATCH (t:Task) "
	if len(plan.Where) > 0 {
		cypher += "WHERE " + strings.Join(plan.Where, " AND ") + " "
	}
	cypher += collectSubtasks + taskReturn + " ORDER BY " + plan.OrderBy

	session := n.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, plan.Params)
		if err != nil {
			return nil, err
		}

		var tasks []models.Task
		for res.Next(ctx) {
			tasks = append(tasks, scanTask(res.Record().Values))
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.Task), nil
}

func (n *Neo4jStore) Get(ctx context.Context, id string) (*models.Task, error) {
	session := n.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return fetchTask(ctx, tx, id)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Task), nil
}

func (n *Neo4jStore) Create(ctx context.Context, task models.Task) (*models.Task, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	task.ID = uuid.New().String()
	task.CreatedAt = now
	task.UpdatedAt = now
	for i := range task.Subtasks {
		task.Subtasks[i].ID = uuid.New().String()
	}

	session := n.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx,
			"CREATE (t:Task {id: $id, title: $title, completed: $completed, "+
				"dueAt: $dueAt, tags: $tags, createdAt: $now, updatedAt: $now}) "+
				"FOREACH (sub IN $subtasks | "+
				"CREATE (t)-[:HAS_SUBTASK]->(:Subtask {id: sub.id, title: sub.title, completed: sub.completed, idx: sub.idx}))",
			map[string]any{
				"id":        task.ID,
				"title":     task.Title,
				"completed": task.Completed,
				"dueAt":     millisOrNil(task.DueAt),
				"tags":      task.Tags,
				"now":       now.UnixMilli(),
				"subtasks":  subtaskParams(task.Subtasks),
			},
		)
		return nil, err
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (n *Neo4jStore) Update(ctx context.Context, id string, upd models.TaskUpdate) (*models.Task, error) {
	set := []string{"t.updatedAt = $now"}
	params := map[string]any{
		"id":  id,
		"now": time.Now().UTC().UnixMilli(),
	}
	if upd.Title != nil {
		set = append(set, "t.title = $title")
		params["title"] = *upd.Title
	}
	if upd.Completed != nil {
		set = append(set, "t.completed = $completed")
		params["completed"] = *upd.Completed
	}
	if upd.DueAt.Set {
		set = append(set, "t.dueAt = $dueAt")
		params["dueAt"] = millisOrNil(upd.DueAt.Value)
	}
	if upd.Tags != nil {
		set = append(set, "t.tags = $tags")
		params["tags"] = *upd.Tags
	}

	session := n.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (t:Task {id: $id}) SET "+strings.Join(set, ", ")+" RETURN t.id",
			params,
		)
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, models.ErrNotFound
		}

		if upd.Subtasks != nil {
			if err := replaceSubtasks(ctx, tx, id, *upd.Subtasks); err != nil {
				return nil, err
			}
		}
		return fetchTask(ctx, tx, id)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Task), nil
}

func (n *Neo4jStore) Delete(ctx context.Context, id string) error {
	session := n.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (t:Task {id: $id}) "+
				"OPTIONAL MATCH (t)-[:HAS_SUBTASK]->(s:Subtask) "+
				"WITH t, collect(s) AS subs, t.id AS found "+
				"DETACH DELETE t "+
				"FOREACH (s IN subs | DETACH DELETE s) "+
				"RETURN found",
			map[string]any{"id": id},
		)
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, models.ErrNotFound
		}
		return nil, nil
	})
	return err
}

func (n *Neo4jStore) BulkSetCompleted(ctx context.Context, ids []string, completed bool) ([]models.Task, error) {
	session := n.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx,
			"MATCH (t:Task) WHERE t.id IN $ids SET t.completed = $completed, t.updatedAt = $now",
			map[string]any{
				"ids":       ids,
				"completed": completed,
				"now":       time.Now().UTC().UnixMilli(),
			},
		)
		if err != nil {
			return nil, err
		}

		res, err := tx.Run(ctx,
			"MATCH (t:Task) WHERE t.id IN $ids "+
				collectSubtasks+taskReturn+" ORDER BY t.createdAt DESC",
			map[string]any{"ids": ids},
		)
		if err != nil {
			return nil, err
		}
		var tasks []models.Task
		for res.Next(ctx) {
			tasks = append(tasks, scanTask(res.Record().Values))
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.Task), nil
}

func (n *Neo4jStore) BulkDelete(ctx context.Context, ids []string) error {
	session := n.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx,
			"MATCH (t:Task) WHERE t.id IN $ids "+
				"OPTIONAL MATCH (t)-[:HAS_SUBTASK]->(s:Subtask) "+
				"DETACH DELETE t, s",
			map[string]any{"ids": ids},
		)
		return nil, err
	})
	return err
}

func (n *Neo4jStore) AddSubtask(ctx context.Context, taskID, title string) (*models.Task, error) {
	session := n.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (t:Task {id: $taskID}) "+
				"OPTIONAL MATCH (t)-[:HAS_SUBTASK]->(existing:Subtask) "+
				"WITH t, count(existing) AS n "+
				"CREATE (t)-[:HAS_SUBTASK]->(:Subtask {id: $id, title: $title, completed: false, idx: n}) "+
				"SET t.updatedAt = $now "+
				"RETURN t.id",
			map[string]any{
				"taskID": taskID,
				"id":     uuid.New().String(),
				"title":  title,
				"now":    time.Now().UTC().UnixMilli(),
			},
		)
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, models.ErrNotFound
		}
		return fetchTask(ctx, tx, taskID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Task), nil
}

func (n *Neo4jStore) UpdateSubtask(ctx context.Context, taskID, subtaskID string, upd models.SubtaskUpdate) (*models.Task, error) {
	set := []string{"t.updatedAt = $now"}
	params := map[string]any{
		"taskID": taskID,
		"subID":  subtaskID,
		"now":    time.Now().UTC().UnixMilli(),
	}
	if upd.Title != nil {
		set = append(set, "s.title = $title")
		params["title"] = *upd.Title
	}
	if upd.Completed != nil {
		set = append(set, "s.completed = $completed")
		params["completed"] = *upd.Completed
	}

	session := n.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (t:Task {id: $taskID})-[:HAS_SUBTASK]->(s:Subtask {id: $subID}) "+
				"SET "+strings.Join(set, ", ")+" RETURN t.id",
			params,
		)
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, models.ErrNotFound
		}
		return fetchTask(ctx, tx, taskID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Task), nil
}

func (n *Neo4jStore) RemoveSubtask(ctx context.Context, taskID, subtaskID string) error {
	session := n.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (t:Task {id: $taskID})-[r:HAS_SUBTASK]->(s:Subtask {id: $subID}) "+
				"SET t.updatedAt = $now "+
				"WITH t, r, s, s.id AS removed "+
				"DELETE r, s "+
				"RETURN removed",
			map[string]any{
				"taskID": taskID,
				"subID":  subtaskID,
				"now":    time.Now().UTC().UnixMilli(),
			},
		)
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, models.ErrNotFound
		}
		return nil, nil
	})
	return err
}

// replaceSubtasks swaps a task's subtask nodes for the supplied set, keeping
// ids carried in the edits and assigning fresh ones to new entries.
func replaceSubtasks(ctx context.Context, tx neo4j.ManagedTransaction, taskID string, edits []models.SubtaskEdit) error {
	_, err := tx.Run(ctx,
		"MATCH (t:Task {id: $id})-[r:HAS_SUBTASK]->(s:Subtask) DELETE r, s",
		map[string]any{"id": taskID},
	)
	if err != nil {
		return err
	}

	subs := make([]models.Subtask, 0, len(edits))
	for _, e := range edits {
		id := e.ID
		if id == "" {
			id = uuid.New().String()
		}
		subs = append(subs, models.Subtask{ID: id, Title: e.Title, Completed: e.Completed})
	}
	_, err = tx.Run(ctx,
		"MATCH (t:Task {id: $id}) "+
			"FOREACH (sub IN $subtasks | "+
			"CREATE (t)-[:HAS_SUBTASK]->(:Subtask {id: sub.id, title: sub.title, completed: sub.completed, idx: sub.idx}))",
		map[string]any{"id": taskID, "subtasks": subtaskParams(subs)},
	)
	return err
}

// fetchTask reads one task with its ordered subtasks inside tx.
func fetchTask(ctx context.Context, tx neo4j.ManagedTransaction, id string) (*models.Task, error) {
	res, err := tx.Run(ctx,
		"MATCH (t:Task {id: $id}) "+collectSubtasks+taskReturn,
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	if res.Next(ctx) {
		task := scanTask(res.Record().Values)
		return &task, nil
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return nil, models.ErrNotFound
}

// scanTask decodes one record in taskReturn column order.
func scanTask(values []any) models.Task {
	task := models.Task{
		ID:        values[0].(string),
		Title:     values[1].(string),
		Completed: values[2].(bool),
		CreatedAt: time.UnixMilli(values[5].(int64)).UTC(),
		UpdatedAt: time.UnixMilli(values[6].(int64)).UTC(),
	}
	if values[3] != nil {
		due := time.UnixMilli(values[3].(int64)).UTC()
		task.DueAt = &due
	}
	if values[4] != nil {
		for _, tag := range values[4].([]any) {
			task.Tags = append(task.Tags, tag.(string))
		}
	}
	if values[7] != nil {
		for _, raw := range values[7].([]any) {
			sub := raw.(map[string]any)
			task.Subtasks = append(task.Subtasks, models.Subtask{
				ID:        sub["id"].(string),
				Title:     sub["title"].(string),
				Completed: sub["completed"].(bool),
			})
		}
	}
	return task
}

func subtaskParams(subs []models.Subtask) []any {
	params := make([]any, 0, len(subs))
	for i, s := range subs {
		params = append(params, map[string]any{
			"id":        s.ID,
			"title":     s.Title,
			"completed": s.Completed,
			"idx":       i,
		})
	}
	return params
}

func millisOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}
