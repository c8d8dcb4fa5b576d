package postgres

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create documents table: one JSONB document per record, keyed by kind and id
			CREATE TABLE documents (
				kind VARCHAR(50) NOT NULL,
				id VARCHAR(255) NOT NULL,
				data JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				PRIMARY KEY (kind, id)
			);

			CREATE INDEX idx_documents_kind ON documents(kind);
			CREATE INDEX idx_documents_updated_at ON documents(updated_at);
		`,
		2: `
			-- Index execution documents by the workflow they ran, for per-workflow history queries
			CREATE INDEX idx_documents_execution_workflow
				ON documents ((data->>'workflow_id'))
				WHERE kind = 'executions';
		`,
	}
}
