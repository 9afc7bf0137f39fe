package images

import (
	"path/filepath"

	"github.com/cuemby/swarm/pkg/runtime"
	"github.com/cuemby/swarm/pkg/types"
)

const (
	neo4jUser     = "neo4j"
	neo4jPassword = "test"
)

func buildNeo4j(n *types.Neo4j, bc *BuildContext) (*runtime.ContainerSpec, error) {
	spec := newSpec(n, bc, "/data", n.Port, n.BoltPort)

	root := bc.Volumes.Path(bc.Project, n.Name)
	spec.Binds = append(spec.Binds,
		filepath.Join(root, "logs")+":/logs",
		filepath.Join(root, "plugins")+":/plugins",
		filepath.Join(root, "import")+":/var/lib/neo4j/import",
	)

	spec.Env = []string{
		"NEO4J_AUTH=" + neo4jUser + "/" + neo4jPassword,
		"NEO4J_apoc_export_file_enabled=true",
		"NEO4J_apoc_import_file_enabled=true",
		"NEO4J_dbms_security_procedures_unrestricted=apoc.*,algo.*",
		"NEO4J_dbms_memory_heap_initial__size=512m",
		"NEO4J_dbms_memory_heap_max__size=2G",
		"NEO4J_apoc_uuid_enabled=true",
		"NEO4J_dbms_default__listen__address=0.0.0.0",
		"NEO4J_dbms_connector_bolt_listen__address=0.0.0.0:" + n.BoltPort,
		"NEO4J_dbms_allow__upgrade=true",
		"NEO4J_dbms_default__database=neo4j",
	}
	return spec, nil
}

// Neo4jReadyCmd is a command that succeeds inside the neo4j container once
// the database accepts bolt connections
func Neo4jReadyCmd(n *types.Neo4j) []string {
	return []string{"cypher-shell", "-a", "bolt://localhost:" + n.BoltPort, "-u", neo4jUser, "-p", neo4jPassword, "RETURN 1"}
}

func buildJarvis(j *types.Jarvis, bc *BuildContext) (*runtime.ContainerSpec, error) {
	neo4j, err := Linked[*types.Neo4j](j, bc.Nodes, types.KindNeo4j)
	if err != nil {
		return nil, err
	}

	spec := newSpec(j, bc, "/data", j.Port)
	spec.Env = []string{
		"PORT=" + j.Port,
		"NEO4J_HOST=" + Domain(neo4j.Name) + ":" + neo4j.BoltPort,
		"NEO4J_USER=" + neo4jUser,
		"NEO4J_PASSWORD=" + neo4jPassword,
	}
	return spec, nil
}
