package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create configuration_documents table
			CREATE TABLE configuration_documents (
				kind VARCHAR(64) NOT NULL,
				id VARCHAR(255) NOT NULL,
				version INTEGER NOT NULL,
				active BOOLEAN NOT NULL DEFAULT TRUE,
				document JSONB NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				PRIMARY KEY (kind, id, version)
			);

			CREATE INDEX idx_configuration_documents_kind_active ON configuration_documents(kind, active);
		`,
	}
}
